package mysql

import (
	"context"

	"lightbnb/internal/domain"
	"lightbnb/internal/storage/sqlbuild"
)

type PropertyRepo struct{ db DBTX }

func NewPropertyRepo(db DBTX) *PropertyRepo { return &PropertyRepo{db: db} }

func (r *PropertyRepo) SearchProperties(ctx context.Context, s domain.PropertySearch, limit int) ([]domain.PropertyListing, error) {
	q, args := searchPropertiesQuery(s, limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
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
	return out, rows.Err()
}

// utf8mb4_bin keeps the city substring match case-sensitive like LIKE on Postgres.
func searchPropertiesQuery(s domain.PropertySearch, limit int) (string, []any) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	q := sqlbuild.Select(sqlbuild.MySQL, searchPropertiesHead).
		Where("properties.city COLLATE utf8mb4_bin LIKE ?", "%"+s.EffectiveCity()+"%")
	if s.Price != nil {
		lo, hi, _ := s.Price.MinorUnits()
		q.Where("(properties.cost_per_night > ? AND properties.cost_per_night < ?)", lo, hi)
	}
	q.GroupBy("properties.id")
	if s.MinimumRating != nil {
		q.Having("AVG(property_reviews.rating) >= ?", *s.MinimumRating)
	}
	return q.OrderBy("properties.cost_per_night").Limit(limit).Build()
}

// AddProperty inserts and reads the row back. The two statements are not in
// one transaction; the read cannot miss because ids are never reused.
func (r *PropertyRepo) AddProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	res, err := r.db.ExecContext(ctx, insertPropertySQL,
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
	)
	if err != nil {
		return domain.Property{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Property{}, err
	}
	var out domain.Property
	if err := r.db.QueryRowContext(ctx, getPropertyByIDSQL, id).Scan(propertyDest(&out)...); err != nil {
		return domain.Property{}, err
	}
	return out, nil
}

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
