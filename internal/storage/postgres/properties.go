package postgres

import (
	"context"

	"lightbnb/internal/domain"
	"lightbnb/internal/storage/sqlbuild"
)

type PropertyRepo struct{ db DBTX }

func NewPropertyRepo(db DBTX) *PropertyRepo { return &PropertyRepo{db: db} }

func (r *PropertyRepo) SearchProperties(ctx context.Context, s domain.PropertySearch, limit int) ([]domain.PropertyListing, error) {
	q, args := searchPropertiesQuery(s, limit)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PropertyListing, 0, 16)
	for rows.Next() {
		var l domain.PropertyListing
		if err := rows.Scan(append(propertyDest(&l.Property), &l.AverageRating)...); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// searchPropertiesQuery renders the search. The city filter is always present;
// the price range and minimum rating only when set.
func searchPropertiesQuery(s domain.PropertySearch, limit int) (string, []any) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	q := sqlbuild.Select(sqlbuild.Postgres, searchPropertiesHead).
		Where("properties.city LIKE ?", "%"+s.EffectiveCity()+"%")
	if s.Price != nil {
		lo, hi, _ := s.Price.MinorUnits()
		q.Where("(properties.cost_per_night > ? AND properties.cost_per_night < ?)", lo, hi)
	}
	q.GroupBy("properties.id")
	if s.MinimumRating != nil {
		q.Having("avg(property_reviews.rating) >= ?", *s.MinimumRating)
	}
	return q.OrderBy("properties.cost_per_night").Limit(limit).Build()
}

func (r *PropertyRepo) AddProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	var out domain.Property
	err := r.db.QueryRow(ctx, insertPropertySQL,
		p.Title,
		p.Description,
		p.ThumbnailPhotoURL,
		p.CoverPhotoURL,
		p.CostPerNight,
		p.Street,
		p.City,
		p.Province,
		p.PostCode,
		p.Country,
		p.ParkingSpaces,
		p.NumberOfBathrooms,
		p.NumberOfBedrooms,
		p.OwnerID,
	).Scan(propertyDest(&out)...)
	if err != nil {
		return domain.Property{}, err
	}
	return out, nil
}

// propertyDest lists scan targets in propertyColumns order.
func propertyDest(p *domain.Property) []any {
	return []any{
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ThumbnailPhotoURL,
		&p.CoverPhotoURL,
		&p.CostPerNight,
		&p.Street,
		&p.City,
		&p.Province,
		&p.PostCode,
		&p.Country,
		&p.ParkingSpaces,
		&p.NumberOfBathrooms,
		&p.NumberOfBedrooms,
		&p.OwnerID,
	}
}
