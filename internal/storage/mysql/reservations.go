package mysql

import (
	"context"

	"lightbnb/internal/domain"
)

type ReservationRepo struct{ db DBTX }

func NewReservationRepo(db DBTX) *ReservationRepo { return &ReservationRepo{db: db} }

func (r *ReservationRepo) GetReservationsForGuest(ctx context.Context, guestID int64, limit int) ([]domain.GuestReservation, error) {
	if limit <= 0 {
		limit = domain.DefaultReservationLimit
	}
	rows, err := r.db.QueryContext(ctx, guestReservationsSQL, guestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GuestReservation
	for rows.Next() {
		var g domain.GuestReservation
		dest := []any{&g.ID, &g.PropertyID, &g.GuestID, &g.StartDate, &g.EndDate}
		dest = append(dest, propertyDest(&g.Property)...)
		dest = append(dest, &g.AverageRating)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
