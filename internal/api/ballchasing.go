package api

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"

	"vanta-site/internal/config"

	"github.com/rs/zerolog"
)

const ballchasingBase = "https://ballchasing.com/api"

type Ballchasing struct {
	client  *Client
	apiKey  string
	baseURL string
	logger  zerolog.Logger
}

func NewBallchasing(client *Client, cfg *config.Config, logger zerolog.Logger) *Ballchasing {
	return &Ballchasing{client: client, apiKey: cfg.BallchasingAPIKey, baseURL: ballchasingBase, logger: logger}
}

type Replays struct {
	OK     bool     `json:"ok"`
	Reason string   `json:"reason,omitempty"`
	Note   string   `json:"note"`
	Items  []Replay `json:"items"`
}

// Replay is one match summary. Nil fields were missing upstream.
type Replay struct {
	ID          string  `json:"id"`
	URL         *string `json:"url"`
	Date        *string `json:"date"`
	Map         *string `json:"map"`
	Playlist    *string `json:"playlist"`
	TeamSize    *int    `json:"teamSize"`
	Season      *string `json:"season"`
	Overtime    bool    `json:"overtime"`
	Duration    *string `json:"duration"`
	BlueGoals   *int    `json:"blueGoals"`
	OrangeGoals *int    `json:"orangeGoals"`
	Result      *string `json:"result"`
	TopPlayer   *string `json:"topPlayer"`
	Note        string  `json:"note"`
}

type Participant struct {
	Name    string
	Score   int
	Goals   int
	Assists int
	Saves   int
	Shots   int
}

type bcList struct {
	List []bcReplay `json:"list"`
}

type bcReplay struct {
	ID           string   `json:"id"`
	Link         string   `json:"link"`
	Date         string   `json:"date"`
	Created      string   `json:"created"`
	MapName      string   `json:"map_name"`
	MapCode      string   `json:"map_code"`
	PlaylistName string   `json:"playlist_name"`
	PlaylistID   string   `json:"playlist_id"`
	TeamSize     int      `json:"team_size"`
	Season       any      `json:"season"`
	Overtime     bool     `json:"overtime"`
	Duration     *float64 `json:"duration"`
	Blue         bcTeam   `json:"blue"`
	Orange       bcTeam   `json:"orange"`
}

type bcTeam struct {
	Goals   *int       `json:"goals"`
	Players []bcPlayer `json:"players"`
}

type bcPlayer struct {
	Name  string `json:"name"`
	Stats struct {
		Core struct {
			Score   int `json:"score"`
			Goals   int `json:"goals"`
			Assists int `json:"assists"`
			Saves   int `json:"saves"`
			Shots   int `json:"shots"`
		} `json:"core"`
	} `json:"stats"`
}

// Recent lists the latest replays, restricted to groupID when it is set.
func (b *Ballchasing) Recent(ctx context.Context, groupID string, count int) Replays {
	const failed = "Ballchasing not configured or request failed."
	if b.apiKey == "" {
		return Replays{Reason: "Missing BALLCHASING_API_KEY", Note: failed, Items: []Replay{}}
	}

	q := url.Values{}
	if groupID != "" {
		q.Set("group", groupID)
	}
	q.Set("count", strconv.Itoa(count))

	resp, err := doRequest[bcList](ctx, b.client, b.baseURL+"/replays?"+q.Encode(), header{"Authorization", b.apiKey})
	if err != nil {
		b.logger.Error().Err(err).Str("group", groupID).Msg("ballchasing request failed")
		return Replays{Reason: fmt.Sprintf("Ballchasing request failed: %v", err), Note: failed, Items: []Replay{}}
	}

	items := make([]Replay, 0, len(resp.List))
	for _, r := range resp.List {
		items = append(items, normalizeReplay(r))
	}

	note := "Source: ballchasing.com (latest uploads)"
	if groupID != "" {
		note = "Source: ballchasing.com (group filtered)"
	}
	return Replays{OK: true, Note: note, Items: items}
}

func normalizeReplay(r bcReplay) Replay {
	out := Replay{
		ID:          r.ID,
		URL:         firstNonEmpty(r.Link, replayLink(r.ID)),
		Date:        firstNonEmpty(r.Date, r.Created),
		Map:         firstNonEmpty(r.MapName, r.MapCode),
		Playlist:    firstNonEmpty(r.PlaylistName, r.PlaylistID),
		Season:      seasonLabel(r.Season),
		Overtime:    r.Overtime,
		Duration:    FormatDuration(r.Duration),
		BlueGoals:   r.Blue.Goals,
		OrangeGoals: r.Orange.Goals,
		Result:      MatchResult(r.Blue.Goals, r.Orange.Goals),
	}
	if r.TeamSize > 0 {
		size := r.TeamSize
		out.TeamSize = &size
	}

	var players []Participant
	for _, team := range []bcTeam{r.Blue, r.Orange} {
		for _, p := range team.Players {
			c := p.Stats.Core
			players = append(players, Participant{Name: p.Name, Score: c.Score, Goals: c.Goals, Assists: c.Assists, Saves: c.Saves, Shots: c.Shots})
		}
	}
	RankParticipants(players)

	if len(players) > 0 {
		top := players[0]
		out.TopPlayer = firstNonEmpty(top.Name)
		out.Note = fmt.Sprintf("%d score • %dG %dA %dS", top.Score, top.Goals, top.Assists, top.Saves)
	}
	return out
}

// RankParticipants orders by score, then goals, then assists, all descending.
func RankParticipants(players []Participant) {
	slices.SortStableFunc(players, func(a, b Participant) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(b.Goals, a.Goals),
			cmp.Compare(b.Assists, a.Assists),
		)
	})
}

// MatchResult compares blue against orange; nil when either total is missing.
func MatchResult(blue, orange *int) *string {
	if blue == nil || orange == nil {
		return nil
	}
	var r string
	switch {
	case *blue > *orange:
		r = "win"
	case *blue < *orange:
		r = "loss"
	default:
		r = "draw"
	}
	return &r
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds *float64) *string {
	if seconds == nil || math.IsNaN(*seconds) {
		return nil
	}
	total := int(math.Floor(*seconds))
	s := fmt.Sprintf("%d:%02d", total/60, total%60)
	return &s
}

func seasonLabel(v any) *string {
	var s string
	switch season := v.(type) {
	case float64:
		if season == 0 {
			return nil
		}
		s = fmt.Sprintf("Season %d", int(season))
	case string:
		if season == "" {
			return nil
		}
		s = "Season " + season
	default:
		return nil
	}
	return &s
}

func replayLink(id string) string {
	if id == "" {
		return ""
	}
	return "https://ballchasing.com/replay/" + id
}

func firstNonEmpty(vals ...string) *string {
	for _, v := range vals {
		if v != "" {
			return &v
		}
	}
	return nil
}
