package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const decAPIBase = "https://decapi.me"

// DecAPI checks handles one by one against a public endpoint that needs no credentials.
type DecAPI struct {
	client  *Client
	baseURL string
	logger  zerolog.Logger
}

func NewDecAPI(client *Client, logger zerolog.Logger) *DecAPI {
	return &DecAPI{client: client, baseURL: decAPIBase, logger: logger}
}

// Live never fails as a whole; a handle that cannot be checked is reported offline.
func (d *DecAPI) Live(ctx context.Context, handles []string) LiveStatus {
	handles = NormalizeHandles(handles)
	results := make([]bool, len(handles))

	var g errgroup.Group
	g.SetLimit(8)
	for i, h := range handles {
		g.Go(func() error {
			body, err := doText(ctx, d.client, d.baseURL+"/twitch/online/"+url.PathEscape(h))
			if err != nil {
				d.logger.Debug().Err(err).Str("handle", h).Msg("live check failed, reporting offline")
				return nil
			}
			results[i] = strings.ToLower(strings.TrimSpace(body)) == "true"
			return nil
		})
	}
	g.Wait()

	live := offline(handles)
	for i, h := range handles {
		live[h] = results[i]
	}
	return LiveStatus{OK: true, Live: live, Channels: map[string]Channel{}}
}
