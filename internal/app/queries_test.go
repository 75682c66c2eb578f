package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lightbnb/internal/app"
	"lightbnb/internal/domain"
)

// ---- fakes ----

type fakeUsers struct {
	mu    sync.Mutex
	next  int64
	added []domain.User
	fail  map[string]error // by email
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUsers) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUsers) AddUser(ctx context.Context, u domain.User) (domain.User, error) {
	if err := f.fail[u.Email]; err != nil {
		return domain.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	u.ID = 100 + f.next
	f.added = append(f.added, u)
	return u, nil
}

type fakeReservations struct{ limit int }

func (f *fakeReservations) GetReservationsForGuest(ctx context.Context, guestID int64, limit int) ([]domain.GuestReservation, error) {
	f.limit = limit
	return nil, nil
}

type fakeProperties struct {
	mu       sync.Mutex
	searches int
	listings []domain.PropertyListing
	added    []domain.Property
}

func (f *fakeProperties) SearchProperties(ctx context.Context, s domain.PropertySearch, limit int) ([]domain.PropertyListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	return append([]domain.PropertyListing(nil), f.listings...), nil
}
func (f *fakeProperties) AddProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.added) + 1)
	f.added = append(f.added, p)
	f.listings = append(f.listings, domain.PropertyListing{Property: p})
	return p, nil
}

// fakeCache stores JSON like the real adapters.
type fakeCache struct {
	mu      sync.Mutex
	store   map[string][]byte
	getErr  error
	incrErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	if c.incrErr != nil {
		return 0, c.incrErr
	}
	var n int64
	_, _ = c.Get(ctx, key, &n)
	n++
	return n, c.Set(ctx, key, n, 0)
}

type harness struct {
	users *fakeUsers
	resv  *fakeReservations
	props *fakeProperties
	cache *fakeCache
	q     *app.QueryService
	c     *app.CommandService
}

func newHarness() *harness {
	h := &harness{users: &fakeUsers{}, resv: &fakeReservations{}, props: &fakeProperties{}, cache: &fakeCache{}}
	repos := domain.Repositories{Users: h.users, Reservations: h.resv, Properties: h.props}
	h.q = app.NewQueryService(repos, h.cache, 10*time.Minute, zerolog.Nop())
	h.c = app.NewCommandService(repos, h.cache, zerolog.Nop())
	return h
}

// ---- tests ----

func TestSearchProperties_CacheMissThenHit(t *testing.T) {
	h := newHarness()
	h.props.listings = []domain.PropertyListing{{Property: domain.Property{ID: 1, Title: "Loft"}}}
	ctx := context.Background()

	out, err := h.q.SearchProperties(ctx, domain.PropertySearch{}, 10)
	if err != nil || len(out) != 1 {
		t.Fatalf("first search: %v %v", out, err)
	}
	// equivalent search: empty city and Montreal share an entry
	out, err = h.q.SearchProperties(ctx, domain.PropertySearch{City: "Montreal"}, 10)
	if err != nil || len(out) != 1 || out[0].Title != "Loft" {
		t.Fatalf("second search: %v %v", out, err)
	}
	if h.props.searches != 1 {
		t.Fatalf("expected one repository call, got %d", h.props.searches)
	}
}

func TestSearchProperties_AddPropertyRetiresCachedResults(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if out, _ := h.q.SearchProperties(ctx, domain.PropertySearch{}, 10); len(out) != 0 {
		t.Fatalf("expected no listings yet, got %v", out)
	}
	if _, err := h.c.AddProperty(ctx, domain.Property{Title: "New", City: "Montreal", OwnerID: 1}); err != nil {
		t.Fatalf("AddProperty: %v", err)
	}
	out, err := h.q.SearchProperties(ctx, domain.PropertySearch{}, 10)
	if err != nil || len(out) != 1 || out[0].Title != "New" {
		t.Fatalf("search after insert: %v %v", out, err)
	}
	if h.props.searches != 2 {
		t.Fatalf("expected a fresh repository call, got %d", h.props.searches)
	}
}

func TestSearchProperties_CacheFailureFallsThrough(t *testing.T) {
	h := newHarness()
	h.cache.getErr = errors.New("redis down")
	h.props.listings = []domain.PropertyListing{{Property: domain.Property{ID: 7}}}

	out, err := h.q.SearchProperties(context.Background(), domain.PropertySearch{}, 0)
	if err != nil || len(out) != 1 {
		t.Fatalf("expected repository result, got %v %v", out, err)
	}
}

func TestSearchProperties_NoCache(t *testing.T) {
	props := &fakeProperties{listings: []domain.PropertyListing{{}}}
	q := app.NewQueryService(domain.Repositories{Properties: props}, nil, time.Minute, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := q.SearchProperties(context.Background(), domain.PropertySearch{}, 5); err != nil {
			t.Fatalf("search: %v", err)
		}
	}
	if props.searches != 2 {
		t.Fatalf("expected every search to reach the repository, got %d", props.searches)
	}
}

func TestSearchProperties_ZeroTTLSkipsCache(t *testing.T) {
	props := &fakeProperties{listings: []domain.PropertyListing{{}}}
	cache := &fakeCache{}
	q := app.NewQueryService(domain.Repositories{Properties: props}, cache, 0, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := q.SearchProperties(context.Background(), domain.PropertySearch{}, 5); err != nil {
			t.Fatalf("search: %v", err)
		}
	}
	if props.searches != 2 || len(cache.store) != 0 {
		t.Fatalf("zero ttl must not cache: searches=%d entries=%d", props.searches, len(cache.store))
	}
}

func TestAddProperty_GenerationBumpFailureStillInserts(t *testing.T) {
	h := newHarness()
	h.cache.incrErr = errors.New("redis down")

	p, err := h.c.AddProperty(context.Background(), domain.Property{Title: "X", OwnerID: 1})
	if err != nil || p.ID == 0 {
		t.Fatalf("AddProperty: %+v %v", p, err)
	}
}

func TestReservationsForGuest_DefaultLimit(t *testing.T) {
	h := newHarness()
	if _, err := h.q.ReservationsForGuest(context.Background(), 1, -3); err != nil {
		t.Fatalf("err: %v", err)
	}
	if h.resv.limit != domain.DefaultReservationLimit {
		t.Fatalf("limit = %d", h.resv.limit)
	}
}
