//go:build integration || !unit

package postgres_test

import (
	"context"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"lightbnb/internal/domain"
	"lightbnb/internal/storage/postgres"
	"lightbnb/internal/storage/postgres/pgtest"
	"lightbnb/internal/storage/sqlerr"
)

func pfloat(f float64) *float64 { return &f }

func dec(i int64) *decimal.Decimal { d := decimal.NewFromInt(i); return &d }

func mustUser(t *testing.T, repo *postgres.UserRepo, name, email string) domain.User {
	t.Helper()
	u, err := repo.AddUser(context.Background(), domain.User{Name: name, Email: email, Password: "password"})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	return u
}

func mustProperty(t *testing.T, repo *postgres.PropertyRepo, owner int64, title, city string, cents int64) domain.Property {
	t.Helper()
	p, err := repo.AddProperty(context.Background(), domain.Property{
		Title:             title,
		Description:       "description",
		ThumbnailPhotoURL: "https://example.com/t.jpg",
		CoverPhotoURL:     "https://example.com/c.jpg",
		CostPerNight:      cents,
		Street:            "1 Main St",
		City:              city,
		Province:          "Quebec",
		PostCode:          "H0H 0H0",
		Country:           "Canada",
		ParkingSpaces:     1,
		NumberOfBathrooms: 2,
		NumberOfBedrooms:  3,
		OwnerID:           owner,
	})
	if err != nil {
		t.Fatalf("AddProperty: %v", err)
	}
	return p
}

func review(t *testing.T, db *pgxpool.Pool, propertyID int64, ratings ...int) {
	t.Helper()
	for _, r := range ratings {
		if _, err := db.Exec(context.Background(),
			`INSERT INTO property_reviews (property_id, rating) VALUES ($1, $2)`, propertyID, r); err != nil {
			t.Fatalf("insert review: %v", err)
		}
	}
}

func costs(ls []domain.PropertyListing) []int64 {
	out := make([]int64, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.CostPerNight)
	}
	return out
}

func TestRepos_Postgres(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()

	users := postgres.NewUserRepo(db, domain.EmailExact)
	props := postgres.NewPropertyRepo(db)
	resv := postgres.NewReservationRepo(db)

	t.Run("user round trip", func(t *testing.T) {
		in := domain.User{Name: "Ana", Email: "ana@example.com", Password: "secret"}
		added, err := users.AddUser(ctx, in)
		if err != nil {
			t.Fatalf("AddUser: %v", err)
		}
		if added.ID == 0 {
			t.Fatalf("expected assigned id")
		}
		got, err := users.GetUserByID(ctx, added.ID)
		if err != nil || got == nil {
			t.Fatalf("GetUserByID: %v %v", got, err)
		}
		in.ID = added.ID
		if *got != in {
			t.Fatalf("round trip mismatch: %+v vs %+v", *got, in)
		}
	})

	t.Run("unknown id is absent", func(t *testing.T) {
		got, err := users.GetUserByID(ctx, 987654)
		if err != nil || got != nil {
			t.Fatalf("expected nil, nil; got %v, %v", got, err)
		}
	})

	t.Run("email matching modes", func(t *testing.T) {
		mustUser(t, users, "Bea", "Bea.Case@example.com")

		got, err := users.GetUserByEmail(ctx, "Bea.Case@example.com")
		if err != nil || got == nil || got.Email != "Bea.Case@example.com" {
			t.Fatalf("exact lookup: %v %v", got, err)
		}
		got, err = users.GetUserByEmail(ctx, "bea.case@example.com")
		if err != nil || got != nil {
			t.Fatalf("exact mode must not fold case: %v %v", got, err)
		}

		fold := postgres.NewUserRepo(db, domain.EmailCaseInsensitive)
		got, err = fold.GetUserByEmail(ctx, "BEA.CASE@EXAMPLE.COM")
		if err != nil || got == nil || got.Email != "Bea.Case@example.com" {
			t.Fatalf("insensitive lookup: %v %v", got, err)
		}
	})

	owner := mustUser(t, users, "Owner", "owner@example.com")
	cheap := mustProperty(t, props, owner.ID, "Cheap", "Montreal", 4000)
	mid := mustProperty(t, props, owner.ID, "Mid", "Montreal", 6000)
	high := mustProperty(t, props, owner.ID, "High", "Montreal", 12000)
	mustProperty(t, props, owner.ID, "Edge", "Montreal", 15000)
	mustProperty(t, props, owner.ID, "Far", "Vancouver", 9000)
	review(t, db, cheap.ID, 5, 4)
	review(t, db, mid.ID, 2, 3)
	review(t, db, high.ID, 4)

	t.Run("default city, ordered by cost", func(t *testing.T) {
		got, err := props.SearchProperties(ctx, domain.PropertySearch{}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		c := costs(got)
		if len(c) != 4 || len(c) > 10 {
			t.Fatalf("expected the 4 Montreal listings, got %v", c)
		}
		if !sort.SliceIsSorted(c, func(i, j int) bool { return c[i] < c[j] }) {
			t.Fatalf("not ordered by cost: %v", c)
		}
		for _, l := range got {
			if l.City != "Montreal" {
				t.Fatalf("unexpected city %q", l.City)
			}
		}
		if got[0].AverageRating == nil || *got[0].AverageRating != 4.5 {
			t.Fatalf("average rating: %v", got[0].AverageRating)
		}
		if got[3].AverageRating != nil {
			t.Fatalf("unreviewed listing should have no rating")
		}
	})

	t.Run("price range is exclusive and in cents", func(t *testing.T) {
		got, err := props.SearchProperties(ctx, domain.PropertySearch{Price: domain.NewPriceRange(dec(40), dec(150))}, 5)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if c := costs(got); len(c) != 2 || c[0] != 6000 || c[1] != 12000 {
			t.Fatalf("got %v", c)
		}
	})

	t.Run("single bound has no effect", func(t *testing.T) {
		all, err := props.SearchProperties(ctx, domain.PropertySearch{}, 5)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		minOnly, err := props.SearchProperties(ctx, domain.PropertySearch{Price: domain.NewPriceRange(dec(50), nil)}, 5)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(all) != len(minOnly) {
			t.Fatalf("min-only search differs: %v vs %v", costs(all), costs(minOnly))
		}
	})

	t.Run("minimum rating", func(t *testing.T) {
		got, err := props.SearchProperties(ctx, domain.PropertySearch{MinimumRating: pfloat(4)}, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 listings rated >= 4, got %v", costs(got))
		}
		for _, l := range got {
			if l.AverageRating == nil || *l.AverageRating < 4 {
				t.Fatalf("rating filter leaked %+v", l)
			}
		}
	})

	t.Run("city match is case-sensitive substring", func(t *testing.T) {
		got, err := props.SearchProperties(ctx, domain.PropertySearch{City: "ancouv"}, 10)
		if err != nil || len(got) != 1 {
			t.Fatalf("substring: %v %v", costs(got), err)
		}
		got, err = props.SearchProperties(ctx, domain.PropertySearch{City: "vancouver"}, 10)
		if err != nil || len(got) != 0 {
			t.Fatalf("lowercase should not match: %v %v", costs(got), err)
		}
	})

	t.Run("added property is searchable", func(t *testing.T) {
		p := mustProperty(t, props, owner.ID, "Fresh", "Sherbrooke", 7000)
		got, err := props.SearchProperties(ctx, domain.PropertySearch{City: "Sherbrooke"}, 10)
		if err != nil || len(got) != 1 || got[0].ID != p.ID {
			t.Fatalf("expected the new property, got %+v %v", got, err)
		}
	})

	t.Run("insert with unknown owner is a foreign key violation", func(t *testing.T) {
		_, err := props.AddProperty(ctx, domain.Property{Title: "Orphan", City: "Nowhere", OwnerID: 424242})
		if sqlerr.Classify(err) != sqlerr.KindForeignKeyViolation {
			t.Fatalf("expected fk violation, got %v", err)
		}
	})

	t.Run("reservations exclude current and future stays", func(t *testing.T) {
		guest := mustUser(t, users, "Guest", "guest@example.com")
		for _, q := range []string{
			`INSERT INTO reservations (start_date, end_date, property_id, guest_id) VALUES (CURRENT_DATE - 10, CURRENT_DATE - 5, $1, $2)`,
			`INSERT INTO reservations (start_date, end_date, property_id, guest_id) VALUES (CURRENT_DATE - 30, CURRENT_DATE - 25, $1, $2)`,
			`INSERT INTO reservations (start_date, end_date, property_id, guest_id) VALUES (CURRENT_DATE - 2, CURRENT_DATE, $1, $2)`,
			`INSERT INTO reservations (start_date, end_date, property_id, guest_id) VALUES (CURRENT_DATE + 3, CURRENT_DATE + 6, $1, $2)`,
		} {
			if _, err := db.Exec(ctx, q, cheap.ID, guest.ID); err != nil {
				t.Fatalf("insert reservation: %v", err)
			}
		}

		got, err := resv.GetReservationsForGuest(ctx, guest.ID, 10)
		if err != nil {
			t.Fatalf("GetReservationsForGuest: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 completed stays, got %d", len(got))
		}
		if !got[0].StartDate.Before(got[1].StartDate) {
			t.Fatalf("not ordered by start date: %v, %v", got[0].StartDate, got[1].StartDate)
		}
		if got[0].Property.ID != cheap.ID || got[0].AverageRating == nil || *got[0].AverageRating != 4.5 {
			t.Fatalf("enrichment: %+v", got[0])
		}

		one, err := resv.GetReservationsForGuest(ctx, guest.ID, 1)
		if err != nil || len(one) != 1 {
			t.Fatalf("limit: %d %v", len(one), err)
		}
	})
}
