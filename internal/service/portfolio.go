package service

import (
	"context"
	"sync"
	"time"

	"vanta-site/internal/api"
	"vanta-site/internal/config"
	"vanta-site/internal/constants"
	"vanta-site/internal/domain"
	"vanta-site/internal/view"

	"github.com/rs/zerolog"
)

type RepoSource interface {
	Profile(ctx context.Context, user string, f api.RepoFilter) api.Repositories
}

// PortfolioService serves the project catalogue and a cached view of the GitHub account.
// Only successful GitHub results are cached.
type PortfolioService struct {
	repos  RepoSource
	user   string
	filter api.RepoFilter
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu        sync.Mutex
	cached    *api.Repositories
	fetchedAt time.Time
}

func NewPortfolioService(repos RepoSource, cfg *config.Config, logger zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		repos: repos,
		user:  cfg.GithubUser,
		filter: api.RepoFilter{
			Pinned:  cfg.GithubPinned,
			Blocked: cfg.GithubBlocked,
			Max:     cfg.GithubMaxRepos,
		},
		ttl:    constants.GithubCacheTTL,
		now:    time.Now,
		logger: logger.With().Str("service", "portfolio").Logger(),
	}
}

func (s *PortfolioService) Repositories(ctx context.Context) api.Repositories {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		s.logger.Debug().Str("user", s.user).Msg("returning cached repositories")
		return *s.cached
	}

	result := s.repos.Profile(ctx, s.user, s.filter)
	if result.OK {
		s.cached = &result
		s.fetchedAt = s.now()
	}
	return result
}

func (s *PortfolioService) Projects(category string) []domain.Project {
	return view.Projects(domain.Projects(), category)
}
