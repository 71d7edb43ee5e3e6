package service

import (
	"context"
	"testing"
	"time"

	"vanta-site/internal/api"
	"vanta-site/internal/config"
)

type fakeRepos struct {
	calls int
	ok    bool
	got   api.RepoFilter
}

func (f *fakeRepos) Profile(_ context.Context, user string, filter api.RepoFilter) api.Repositories {
	f.calls++
	f.got = filter
	if !f.ok {
		return api.Repositories{Reason: "rate limited", Repos: []api.Repo{}}
	}
	return api.Repositories{OK: true, User: &api.GithubUser{Login: user}, Repos: []api.Repo{{Name: "site"}}}
}

func TestRepositoriesCache(t *testing.T) {
	repos := &fakeRepos{ok: true}
	svc := NewPortfolioService(repos, &config.Config{GithubUser: "me", GithubMaxRepos: 5, GithubPinned: []string{"site"}}, nop)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if got := svc.Repositories(ctx); !got.OK || got.User.Login != "me" {
			t.Fatalf("unexpected result %+v", got)
		}
	}
	if repos.calls != 1 {
		t.Errorf("expected one upstream call, got %d", repos.calls)
	}
	if repos.got.Max != 5 || len(repos.got.Pinned) != 1 {
		t.Errorf("filter not passed through: %+v", repos.got)
	}

	now = now.Add(svc.ttl)
	svc.Repositories(ctx)
	if repos.calls != 2 {
		t.Errorf("expected refetch after ttl, got %d calls", repos.calls)
	}
}

func TestRepositoriesFailuresAreNotCached(t *testing.T) {
	repos := &fakeRepos{}
	svc := NewPortfolioService(repos, &config.Config{GithubUser: "me"}, nop)

	ctx := context.Background()
	if got := svc.Repositories(ctx); got.OK || got.Reason == "" {
		t.Errorf("expected failure, got %+v", got)
	}
	svc.Repositories(ctx)
	if repos.calls != 2 {
		t.Errorf("expected failures to be retried, got %d calls", repos.calls)
	}
}

func TestProjectsByCategory(t *testing.T) {
	svc := NewPortfolioService(&fakeRepos{}, &config.Config{}, nop)
	if got := svc.Projects("All"); len(got) != 3 {
		t.Errorf("expected all projects, got %d", len(got))
	}
	if got := svc.Projects("applications"); len(got) != 1 || got[0].Title != "TACNET" {
		t.Errorf("unexpected applications %+v", got)
	}
	if got := svc.Projects("Security"); len(got) != 0 {
		t.Errorf("expected no security projects, got %+v", got)
	}
}
