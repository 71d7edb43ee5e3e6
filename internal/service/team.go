package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"vanta-site/internal/api"
	"vanta-site/internal/blob"
	"vanta-site/internal/config"
	"vanta-site/internal/constants"
	"vanta-site/internal/domain"
	"vanta-site/internal/pubsub"
	"vanta-site/internal/repository"
	"vanta-site/internal/view"

	"github.com/rs/zerolog"
)

type TeamDocuments = repository.DocumentStore[domain.Team]

// TeamStore is the directory-backed blob store that holds team.json.
type TeamStore struct{ blob.Store }

func NewTeamStore(cfg *config.Config) (*TeamStore, error) {
	fs, err := blob.NewFileStore(cfg.TeamDataDir)
	if err != nil {
		return nil, err
	}
	return &TeamStore{fs}, nil
}

// NewTeamDocuments keeps the tracker document as indented JSON in team.json.
func NewTeamDocuments(store *TeamStore, logger zerolog.Logger) *TeamDocuments {
	return repository.NewDocumentStore(store, repository.DocumentConfig[domain.Team]{
		Key:    constants.TeamKey,
		Seed:   domain.SeedTeam,
		Indent: true,
	}, logger)
}

// ReplaySource lists recent matches for a replay group.
type ReplaySource interface {
	Recent(ctx context.Context, groupID string, count int) api.Replays
}

type TeamService struct {
	docs    *TeamDocuments
	live    api.LiveChecker
	replays ReplaySource
	groupID string
	events  Publisher
	now     func() time.Time
	logger  zerolog.Logger
}

func NewTeamService(docs *TeamDocuments, live api.LiveChecker, replays ReplaySource, cfg *config.Config, events Publisher, logger zerolog.Logger) *TeamService {
	return &TeamService{
		docs:    docs,
		live:    live,
		replays: replays,
		groupID: cfg.BallchasingGroupID,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With().Str("service", "team").Logger(),
	}
}

// Raw returns team.json exactly as stored.
func (s *TeamService) Raw(ctx context.Context) ([]byte, error) {
	raw, err := s.docs.Raw(ctx)
	if err != nil {
		return nil, loadError(err)
	}
	return raw, nil
}

func (s *TeamService) Team(ctx context.Context) (*domain.Team, error) {
	team, err := s.docs.LoadOrSeed(ctx)
	if err != nil {
		return nil, loadError(err)
	}
	return team, nil
}

func (s *TeamService) Roster(ctx context.Context, query string, live map[string]bool) ([]view.PlayerCard, error) {
	team, err := s.Team(ctx)
	if err != nil {
		return nil, err
	}
	return view.Players(team, query, live), nil
}

// SaveSnapshot merges the submitted brackets into the player and appends the submission to history.
// Null brackets are skipped, an empty rank or a non-finite mmr leaves the stored value alone.
func (s *TeamService) SaveSnapshot(ctx context.Context, playerIndex int, ranks map[string]*domain.RankInput) (*domain.Snapshot, error) {
	if ranks == nil {
		return nil, newError(KindValidation, "Invalid payload")
	}

	var snap domain.Snapshot
	_, err := s.docs.Update(ctx, func(team *domain.Team) error {
		if playerIndex < 0 || playerIndex >= len(team.Players) {
			return newError(KindNotFound, "Player not found")
		}
		p := &team.Players[playerIndex]
		if p.Ranks == nil {
			p.Ranks = map[string]domain.Rank{}
		}

		for bracket, in := range ranks {
			if in == nil {
				continue
			}
			r, had := p.Ranks[bracket]
			changed := false
			if in.Rank != nil && *in.Rank != "" {
				r.Rank = *in.Rank
				changed = true
			}
			if in.MMR != nil && !math.IsNaN(*in.MMR) && !math.IsInf(*in.MMR, 0) {
				v := *in.MMR
				r.MMR = &v
				changed = true
			}
			if had || changed {
				p.Ranks[bracket] = r
			}
		}

		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", playerIndex)
		}
		snap = domain.Snapshot{CreatedAt: s.now(), Player: name, Ranks: ranks}
		team.Snapshots = append(team.Snapshots, snap)
		return nil
	})
	if err != nil {
		if KindOf(err) == KindPersistence {
			return nil, persistenceError(err)
		}
		return nil, err
	}

	s.logger.Info().Int("player_index", playerIndex).Str("player", snap.Player).Msg("snapshot saved")
	if s.events != nil {
		s.events.Publish(pubsub.Event{Type: pubsub.TeamSnapshot, Payload: map[string]any{"player": snap.Player}})
	}
	return &snap, nil
}

// Handles lists the roster's stream handles, normalized.
func (s *TeamService) Handles(ctx context.Context) ([]string, error) {
	team, err := s.Team(ctx)
	if err != nil {
		return nil, err
	}
	return view.Handles(team), nil
}

func (s *TeamService) Live(ctx context.Context, handles []string) api.LiveStatus {
	return s.live.Live(ctx, handles)
}

// RosterLive checks every handle on the roster. The error covers only loading the roster;
// an unreachable provider is reported through the status.
func (s *TeamService) RosterLive(ctx context.Context) (api.LiveStatus, error) {
	handles, err := s.Handles(ctx)
	if err != nil {
		return api.LiveStatus{}, err
	}
	return s.live.Live(ctx, handles), nil
}

// GroupID picks the replay group: the explicit override, then the environment, then the team document.
func (s *TeamService) GroupID(ctx context.Context, override string) string {
	if g := strings.TrimSpace(override); g != "" {
		return g
	}
	if s.groupID != "" {
		return s.groupID
	}
	team, _, err := s.docs.Load(ctx)
	if err != nil || team == nil {
		return ""
	}
	return team.Ballchasing.GroupID
}

func (s *TeamService) Replays(ctx context.Context, override string) api.Replays {
	groupID := s.GroupID(ctx, override)
	s.logger.Debug().Str("group", groupID).Msg("fetching replays")
	return s.replays.Recent(ctx, groupID, constants.ReplayCount)
}
