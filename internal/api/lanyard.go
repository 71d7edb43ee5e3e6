package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const lanyardBase = "https://api.lanyard.rest/v1"

type Lanyard struct {
	client  *Client
	baseURL string
	logger  zerolog.Logger
}

func NewLanyard(client *Client, logger zerolog.Logger) *Lanyard {
	return &Lanyard{client: client, baseURL: lanyardBase, logger: logger}
}

type Activity struct {
	Name    string  `json:"name"`
	Details *string `json:"details"`
	State   *string `json:"state"`
	Type    int     `json:"type"`
}

type Presence struct {
	OK       bool      `json:"ok"`
	Reason   string    `json:"reason,omitempty"`
	Username string    `json:"username,omitempty"`
	Status   string    `json:"status"`
	Activity *Activity `json:"activity"`
}

type lanyardResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		DiscordUser struct {
			ID         string `json:"id"`
			Username   string `json:"username"`
			GlobalName string `json:"global_name"`
		} `json:"discord_user"`
		DiscordStatus string     `json:"discord_status"`
		Activities    []Activity `json:"activities"`
	} `json:"data"`
}

func (l *Lanyard) Presence(ctx context.Context, discordID string) Presence {
	resp, err := doRequest[lanyardResponse](ctx, l.client, l.baseURL+"/users/"+url.PathEscape(discordID))
	if err != nil {
		l.logger.Debug().Err(err).Msg("presence request failed")
		return Presence{Reason: "Presence unavailable", Status: "unknown"}
	}
	if !resp.Success || resp.Data == nil {
		return Presence{Reason: "Presence unavailable", Status: "unknown"}
	}

	name := resp.Data.DiscordUser.GlobalName
	if name == "" {
		name = resp.Data.DiscordUser.Username
	}
	status := resp.Data.DiscordStatus
	if status == "" {
		status = "offline"
	}
	return Presence{
		OK:       true,
		Username: name,
		Status:   status,
		Activity: PrimaryActivity(resp.Data.Activities),
	}
}

// PrimaryActivity prefers an editor session over whatever else is running.
func PrimaryActivity(activities []Activity) *Activity {
	for i := range activities {
		if strings.Contains(strings.ToLower(activities[i].Name), "visual studio code") {
			return &activities[i]
		}
	}
	if len(activities) > 0 {
		return &activities[0]
	}
	return nil
}
