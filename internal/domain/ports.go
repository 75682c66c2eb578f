package domain

import "context"

// Lookups that match nothing return a nil record and a nil error.
// Storage errors are returned unmodified.

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	AddUser(ctx context.Context, u User) (User, error)
}

type ReservationRepository interface {
	GetReservationsForGuest(ctx context.Context, guestID int64, limit int) ([]GuestReservation, error)
}

type PropertyRepository interface {
	SearchProperties(ctx context.Context, s PropertySearch, limit int) ([]PropertyListing, error)
	AddProperty(ctx context.Context, p Property) (Property, error)
}

// Repositories groups the three repositories of one storage backend.
type Repositories struct {
	Users        UserRepository
	Reservations ReservationRepository
	Properties   PropertyRepository
}

// Cache stores JSON-encodable values. Entries are retired by bumping a
// generation counter with Incr rather than by deleting keys.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Incr(ctx context.Context, key string) (int64, error)
}
