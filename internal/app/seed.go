package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"lightbnb/internal/adapters/observability"
	"lightbnb/internal/domain"
)

// Fixtures is a seed file: users first, then properties whose owner_id refers
// to a fixture user id.
type Fixtures struct {
	Users      []map[string]any `json:"users"`
	Properties []map[string]any `json:"properties"`
}

func ParseFixtures(r io.Reader) (Fixtures, error) {
	var fx Fixtures
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&fx); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	normalizeNumbers(fx.Users)
	normalizeNumbers(fx.Properties)
	return fx, nil
}

// normalizeNumbers turns json.Number into int64 or string so the flexible
// mappers see the shapes they expect.
func normalizeNumbers(rows []map[string]any) {
	for _, row := range rows {
		for k, v := range row {
			switch t := v.(type) {
			case json.Number:
				if n, err := t.Int64(); err == nil {
					row[k] = n
				} else {
					row[k] = t.String()
				}
			case map[string]any:
				normalizeNumbers([]map[string]any{t})
			}
		}
	}
}

type SeedReport struct {
	Users      int `json:"users"`
	Properties int `json:"properties"`
	Failed     int `json:"failed"`
}

type SeedService struct {
	repos   domain.Repositories
	cache   domain.Cache
	log     zerolog.Logger
	workers int64
	limiter *rate.Limiter
}

// NewSeedService bounds inserts to workers in flight and rps per second.
// rps <= 0 disables throttling.
func NewSeedService(r domain.Repositories, c domain.Cache, log zerolog.Logger, workers int, rps float64) *SeedService {
	if workers <= 0 {
		workers = 1
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), workers)
	}
	return &SeedService{repos: r, cache: c, log: log, workers: int64(workers), limiter: lim}
}

// Seed inserts every user, then every property with its owner remapped to
// the id the user received. A property whose owner is not a fixture user
// keeps its owner_id as given. It returns the first error seen; rows that
// succeeded stay inserted.
func (s *SeedService) Seed(ctx context.Context, fx Fixtures) (SeedReport, error) {
	var (
		rep      SeedReport
		mu       sync.Mutex
		firstErr error
		idMap    = make(map[int64]int64, len(fx.Users))
	)
	fail := func(entity string, err error) {
		observability.ObserveSeed(entity, err)
		mu.Lock()
		defer mu.Unlock()
		rep.Failed++
		if firstErr == nil {
			firstErr = err
		}
	}

	s.fanOut(ctx, len(fx.Users), func(i int) {
		u, ref, err := mapUser(fx.Users[i])
		if err != nil {
			fail("user", err)
			return
		}
		added, err := s.repos.Users.AddUser(ctx, u)
		if err != nil {
			s.log.Warn().Err(err).Str("email", u.Email).Msg("seed user failed")
			fail("user", fmt.Errorf("add user %q: %w", u.Email, err))
			return
		}
		observability.ObserveSeed("user", nil)
		mu.Lock()
		rep.Users++
		if ref != 0 {
			idMap[ref] = added.ID
		}
		mu.Unlock()
	})

	s.fanOut(ctx, len(fx.Properties), func(i int) {
		p, err := mapProperty(fx.Properties[i])
		if err != nil {
			fail("property", err)
			return
		}
		mu.Lock()
		if id, ok := idMap[p.OwnerID]; ok {
			p.OwnerID = id
		}
		mu.Unlock()
		if _, err := s.repos.Properties.AddProperty(ctx, p); err != nil {
			s.log.Warn().Err(err).Str("title", p.Title).Msg("seed property failed")
			fail("property", fmt.Errorf("add property %q: %w", p.Title, err))
			return
		}
		observability.ObserveSeed("property", nil)
		mu.Lock()
		rep.Properties++
		mu.Unlock()
	})

	if rep.Properties > 0 && s.cache != nil {
		if _, err := s.cache.Incr(ctx, searchGenKey); err != nil {
			s.log.Error().Err(err).Msg("bump search cache generation")
		}
	}
	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return rep, firstErr
}

// fanOut runs fn for 0..n-1 with at most s.workers in flight, waiting on the
// limiter before each call. It stops launching once ctx is done.
func (s *SeedService) fanOut(ctx context.Context, n int, fn func(i int)) {
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			sem.Release(1)
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			fn(i)
		}(i)
	}
	wg.Wait()
}
