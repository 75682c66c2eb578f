package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"lightbnb/internal/domain"
)

// searchGenKey holds the property search cache generation. Every insert bumps
// it, so entries written under an older generation are never read again.
const searchGenKey = "props:gen"

type QueryService struct {
	repos    domain.Repositories
	cache    domain.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewQueryService(r domain.Repositories, c domain.Cache, ttl time.Duration, log zerolog.Logger) *QueryService {
	return &QueryService{repos: r, cache: c, cacheTTL: ttl, log: log}
}

func (s *QueryService) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repos.Users.GetUserByID(ctx, id)
}

func (s *QueryService) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repos.Users.GetUserByEmail(ctx, email)
}

func (s *QueryService) ReservationsForGuest(ctx context.Context, guestID int64, limit int) ([]domain.GuestReservation, error) {
	if limit <= 0 {
		limit = domain.DefaultReservationLimit
	}
	return s.repos.Reservations.GetReservationsForGuest(ctx, guestID, limit)
}

func (s *QueryService) SearchProperties(ctx context.Context, q domain.PropertySearch, limit int) ([]domain.PropertyListing, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	// ttls are whole seconds and Redis reads 0 as no expiry
	if s.cache == nil || s.cacheTTL < time.Second {
		return s.repos.Properties.SearchProperties(ctx, q, limit)
	}

	key := searchKey(s.generation(ctx), q, limit)
	var out []domain.PropertyListing
	ok, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("search cache read failed")
	} else if ok {
		return out, nil
	}

	out, err = s.repos.Properties.SearchProperties(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("search cache write failed")
	}
	return out, nil
}

func (s *QueryService) generation(ctx context.Context) int64 {
	var gen int64
	if _, err := s.cache.Get(ctx, searchGenKey, &gen); err != nil {
		s.log.Warn().Err(err).Msg("search cache generation read failed")
	}
	return gen
}

// searchKey hashes the normalized search so equivalent inputs share an entry.
func searchKey(gen int64, q domain.PropertySearch, limit int) string {
	price := "-"
	if q.Price != nil {
		lo, hi, _ := q.Price.MinorUnits()
		price = fmt.Sprintf("%d-%d", lo, hi)
	}
	rating := "-"
	if q.MinimumRating != nil {
		rating = strconv.FormatFloat(*q.MinimumRating, 'g', -1, 64)
	}
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s|%d", q.EffectiveCity(), price, rating, limit)))
	return fmt.Sprintf("props:%d:%s", gen, hex.EncodeToString(sum[:]))
}
