package fx

import (
	"context"
	"errors"

	"vanta-site/internal/api"
	"vanta-site/internal/blob"
	"vanta-site/internal/config"
	"vanta-site/internal/constants"
	"vanta-site/internal/database"
	"vanta-site/internal/logger"
	"vanta-site/internal/poller"
	"vanta-site/internal/pubsub"
	"vanta-site/internal/render"
	"vanta-site/internal/repository"
	"vanta-site/internal/server"
	"vanta-site/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideStore opens the marketplace blob backend named by STORE_BACKEND.
func ProvideStore(cfg *config.Config, logger zerolog.Logger) (blob.Store, error) {
	logger.Info().Str("backend", cfg.StoreBackend).Msg("opening marketplace store")

	switch cfg.StoreBackend {
	case config.BackendRedis:
		return blob.NewRedisStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, constants.StoreTimeout)
	case config.BackendMemory:
		return blob.NewMemoryStore(), nil
	case config.BackendFile:
		return blob.NewFileStore(cfg.BlobDir)
	default:
		sqlDB, err := database.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		return blob.NewSQLiteStore(sqlDB), nil
	}
}

func ProvidePubSub(cfg *config.Config, logger zerolog.Logger) (*pubsub.PubSub, error) {
	if cfg.NATSURL == "" {
		return pubsub.New(logger), nil
	}
	upstream, err := pubsub.NewNATSUpstream(cfg.NATSURL, cfg.NATSSubject, logger)
	if err != nil {
		return nil, err
	}
	return pubsub.NewWithUpstream(upstream, logger)
}

func ProvidePublisher(ps *pubsub.PubSub) service.Publisher {
	return ps
}

// ProvideLiveChecker prefers Twitch Helix and falls back to the keyless decapi lookups.
func ProvideLiveChecker(client *api.Client, cfg *config.Config, logger zerolog.Logger) api.LiveChecker {
	if cfg.TwitchEnabled() {
		return api.NewTwitch(client, cfg, logger)
	}
	logger.Info().Msg("twitch credentials missing, using decapi for live status")
	return api.NewDecAPI(client, logger)
}

func ProvideReplaySource(b *api.Ballchasing) service.ReplaySource {
	return b
}

func ProvideRepoSource(g *api.GitHub) service.RepoSource {
	return g
}

func ProvidePresencePoller(lanyard *api.Lanyard, cfg *config.Config, logger zerolog.Logger) *server.PresencePoller {
	return poller.New("presence", cfg.PresenceInterval, func(ctx context.Context) (api.Presence, error) {
		p := lanyard.Presence(ctx, cfg.DiscordID)
		if !p.OK {
			return p, errors.New(p.Reason)
		}
		return p, nil
	}, logger)
}

func ProvideLivePoller(team *service.TeamService, cfg *config.Config, logger zerolog.Logger) *server.LivePoller {
	return poller.New("team-live", cfg.LiveInterval, func(ctx context.Context) (api.LiveStatus, error) {
		status, err := team.RosterLive(ctx)
		if err != nil {
			return status, err
		}
		if !status.OK {
			return status, errors.New(status.Reason)
		}
		return status, nil
	}, logger)
}

// StartPollers ties the background pollers to the app lifecycle. Presence only runs with a DISCORD_ID.
func StartPollers(lc fx.Lifecycle, cfg *config.Config, presence *server.PresencePoller, live *server.LivePoller) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if cfg.DiscordID != "" {
				presence.Start(context.Background())
			}
			live.Start(context.Background())
			return nil
		},
		OnStop: func(context.Context) error {
			presence.Stop()
			live.Stop()
			return nil
		},
	})
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	// storage
	fx.Provide(ProvideStore),
	fx.Provide(service.NewTeamStore),
	fx.Provide(repository.NewSessionStore),
	fx.Provide(service.NewPasswordHasher),
	fx.Provide(service.NewMarketDocuments),
	fx.Provide(service.NewTeamDocuments),
	// events
	fx.Provide(ProvidePubSub),
	fx.Provide(ProvidePublisher),
	// api clients
	fx.Provide(api.NewClient),
	fx.Provide(api.NewBallchasing),
	fx.Provide(api.NewGitHub),
	fx.Provide(api.NewLanyard),
	fx.Provide(ProvideLiveChecker),
	fx.Provide(ProvideReplaySource),
	fx.Provide(ProvideRepoSource),
	// svc
	fx.Provide(service.NewMarketService),
	fx.Provide(service.NewTeamService),
	fx.Provide(service.NewPortfolioService),
	// pollers
	fx.Provide(ProvidePresencePoller),
	fx.Provide(ProvideLivePoller),
	fx.Invoke(StartPollers),
	// server
	fx.Provide(render.New),
	fx.Provide(server.New),
)
