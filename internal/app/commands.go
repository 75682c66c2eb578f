package app

import (
	"context"

	"github.com/rs/zerolog"

	"lightbnb/internal/domain"
)

type CommandService struct {
	repos domain.Repositories
	cache domain.Cache
	log   zerolog.Logger
}

func NewCommandService(r domain.Repositories, c domain.Cache, log zerolog.Logger) *CommandService {
	return &CommandService{repos: r, cache: c, log: log}
}

func (s *CommandService) AddUser(ctx context.Context, u domain.User) (domain.User, error) {
	return s.repos.Users.AddUser(ctx, u)
}

// AddProperty inserts and then retires every cached search result.
func (s *CommandService) AddProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	out, err := s.repos.Properties.AddProperty(ctx, p)
	if err != nil {
		return domain.Property{}, err
	}
	s.invalidateSearches(ctx)
	return out, nil
}

func (s *CommandService) invalidateSearches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	gen, err := s.cache.Incr(ctx, searchGenKey)
	if err != nil {
		s.log.Error().Err(err).Msg("bump search cache generation")
		return
	}
	s.log.Debug().Int64("generation", gen).Msg("search cache invalidated")
}
