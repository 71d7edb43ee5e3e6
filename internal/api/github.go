package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"vanta-site/internal/config"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const githubAPIBase = "https://api.github.com"

type GitHub struct {
	client  *Client
	token   string
	baseURL string
	logger  zerolog.Logger
}

func NewGitHub(client *Client, cfg *config.Config, logger zerolog.Logger) *GitHub {
	return &GitHub{client: client, token: cfg.GithubToken, baseURL: githubAPIBase, logger: logger}
}

type GithubUser struct {
	AvatarURL   string  `json:"avatar_url"`
	HTMLURL     string  `json:"html_url"`
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
	PublicRepos int     `json:"public_repos"`
}

type Repo struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	HTMLURL         string   `json:"html_url"`
	Description     *string  `json:"description"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	Language        *string  `json:"language"`
	UpdatedAt       string   `json:"updated_at"`
	Archived        bool     `json:"archived"`
	Fork            bool     `json:"fork"`
	Topics          []string `json:"topics,omitempty"`
}

// RepoFilter entries match a repo by name, owner/name, or the path of its html url.
type RepoFilter struct {
	Pinned  []string
	Blocked []string
	Max     int
}

type Repositories struct {
	OK     bool        `json:"ok"`
	Reason string      `json:"reason,omitempty"`
	User   *GithubUser `json:"user"`
	Repos  []Repo      `json:"repos"`
}

func (g *GitHub) headers() []header {
	h := []header{{"Accept", "application/vnd.github+json"}}
	if g.token != "" {
		h = append(h, header{"Authorization", "Bearer " + g.token})
	}
	return h
}

func (g *GitHub) Profile(ctx context.Context, user string, f RepoFilter) Repositories {
	var (
		profile *GithubUser
		repos   *[]Repo
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		profile, err = doRequest[GithubUser](gctx, g.client, g.baseURL+"/users/"+url.PathEscape(user), g.headers()...)
		if err != nil {
			return fmt.Errorf("user request failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		repos, err = doRequest[[]Repo](gctx, g.client, g.baseURL+"/users/"+url.PathEscape(user)+"/repos?sort=updated&per_page=100", g.headers()...)
		if err != nil {
			return fmt.Errorf("repos request failed: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		g.logger.Error().Err(err).Str("user", user).Msg("github request failed")
		return Repositories{Reason: err.Error(), Repos: []Repo{}}
	}

	return Repositories{OK: true, User: profile, Repos: FilterRepos(*repos, f)}
}

// FilterRepos drops forks, archived and nameless repos, then applies the block list,
// then keeps only pinned repos in pinned order when any are pinned, then truncates.
func FilterRepos(repos []Repo, f RepoFilter) []Repo {
	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		if r.Fork || r.Archived || r.Name == "" || r.HTMLURL == "" {
			continue
		}
		out = append(out, r)
	}

	if len(f.Blocked) > 0 {
		blocked := make(map[string]bool, len(f.Blocked))
		for _, b := range f.Blocked {
			blocked[strings.ToLower(b)] = true
		}
		kept := out[:0]
		for _, r := range out {
			if !blocked[strings.ToLower(r.Name)] && !blocked[strings.ToLower(r.FullName)] {
				kept = append(kept, r)
			}
		}
		out = kept
	}

	if len(f.Pinned) > 0 {
		byKey := make(map[string]Repo, len(out)*3)
		for _, r := range out {
			for _, k := range repoKeys(r) {
				byKey[k] = r
			}
		}
		pinned := make([]Repo, 0, len(f.Pinned))
		for _, p := range f.Pinned {
			if r, ok := byKey[strings.ToLower(p)]; ok {
				pinned = append(pinned, r)
			}
		}
		out = pinned
	}

	if f.Max > 0 && len(out) > f.Max {
		out = out[:f.Max]
	}
	return out
}

func repoKeys(r Repo) []string {
	keys := []string{strings.ToLower(r.Name)}
	if r.FullName != "" {
		keys = append(keys, strings.ToLower(r.FullName))
	}
	if _, path, ok := strings.Cut(r.HTMLURL, "github.com/"); ok && path != "" {
		keys = append(keys, strings.ToLower(path))
	}
	return keys
}
