package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"vanta-site/internal/config"
	"vanta-site/internal/constants"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	twitchTokenURL = "https://id.twitch.tv/oauth2/token"
	twitchAPIBase  = "https://api.twitch.tv/helix"

	// Helix accepts at most this many user_login parameters per request.
	helixMaxLogins = 100
)

// TokenCache reuses an app token until margin before it expires.
type TokenCache struct {
	mu     sync.Mutex
	fetch  func(context.Context) (*oauth2.Token, error)
	margin time.Duration
	now    func() time.Time
	token  *oauth2.Token
}

func NewTokenCache(fetch func(context.Context) (*oauth2.Token, error), margin time.Duration) *TokenCache {
	return &TokenCache{fetch: fetch, margin: margin, now: time.Now}
}

func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.now().Before(c.token.Expiry.Add(-c.margin)) {
		return c.token.AccessToken, nil
	}

	tok, err := c.fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("twitch token request failed: %w", err)
	}
	c.token = tok
	return tok.AccessToken, nil
}

type Twitch struct {
	client   *Client
	clientID string
	tokens   *TokenCache
	baseURL  string
	logger   zerolog.Logger
}

func NewTwitch(client *Client, cfg *config.Config, logger zerolog.Logger) *Twitch {
	cc := &clientcredentials.Config{
		ClientID:     cfg.TwitchClientID,
		ClientSecret: cfg.TwitchClientSecret,
		TokenURL:     twitchTokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return &Twitch{
		client:   client,
		clientID: cfg.TwitchClientID,
		tokens:   NewTokenCache(cc.Token, constants.TokenExpiryDelta),
		baseURL:  twitchAPIBase,
		logger:   logger,
	}
}

type helixStreams struct {
	Data []struct {
		UserLogin   string `json:"user_login"`
		Title       string `json:"title"`
		GameName    string `json:"game_name"`
		StartedAt   string `json:"started_at"`
		ViewerCount int    `json:"viewer_count"`
	} `json:"data"`
}

func (t *Twitch) Live(ctx context.Context, handles []string) LiveStatus {
	handles = NormalizeHandles(handles)
	if len(handles) == 0 {
		return LiveStatus{OK: true, Live: map[string]bool{}, Channels: map[string]Channel{}}
	}
	if t.clientID == "" {
		return unavailable("Missing TWITCH_CLIENT_ID / TWITCH_CLIENT_SECRET")
	}

	token, err := t.tokens.Token(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("twitch token unavailable")
		return unavailable(err.Error())
	}

	status := LiveStatus{OK: true, Live: offline(handles), Channels: map[string]Channel{}}
	for start := 0; start < len(handles); start += helixMaxLogins {
		end := min(start+helixMaxLogins, len(handles))

		q := url.Values{}
		for _, h := range handles[start:end] {
			q.Add("user_login", h)
		}

		resp, err := doRequest[helixStreams](ctx, t.client, t.baseURL+"/streams?"+q.Encode(),
			header{"Client-ID", t.clientID},
			header{"Authorization", "Bearer " + token},
		)
		if err != nil {
			t.logger.Error().Err(err).Int("handles", len(handles)).Msg("twitch streams request failed")
			return unavailable(fmt.Sprintf("Twitch streams request failed: %v", err))
		}

		for _, s := range resp.Data {
			login := strings.ToLower(s.UserLogin)
			status.Live[login] = true
			status.Channels[login] = Channel{
				Title:       s.Title,
				Game:        s.GameName,
				StartedAt:   s.StartedAt,
				ViewerCount: s.ViewerCount,
			}
		}
	}
	return status
}
