package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var nop = zerolog.New(io.Discard)

func TestDecAPIUnreachableHandleIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/twitch/online/a":
			fmt.Fprint(w, "true\n")
		case "/twitch/online/c":
			fmt.Fprint(w, "c is offline")
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	d := NewDecAPI(NewClient(), nop)
	d.baseURL = srv.URL

	got := d.Live(context.Background(), []string{"a", " B ", "c", "a"})
	if !got.OK {
		t.Fatalf("expected ok, got %+v", got)
	}
	if diff := cmp.Diff(map[string]bool{"a": true, "b": false, "c": false}, got.Live); diff != "" {
		t.Errorf("live map mismatch (-want +got):\n%s", diff)
	}
}

func TestDecAPIDeadServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d := NewDecAPI(NewClient(), nop)
	d.baseURL = url

	got := d.Live(context.Background(), []string{"a", "b"})
	if diff := cmp.Diff(map[string]bool{"a": false, "b": false}, got.Live); diff != "" {
		t.Errorf("unreachable handles must be false (-want +got):\n%s", diff)
	}
}

func TestTokenCache(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var calls int
	cache := NewTokenCache(func(context.Context) (*oauth2.Token, error) {
		calls++
		return &oauth2.Token{AccessToken: fmt.Sprintf("tok-%d", calls), Expiry: now.Add(time.Minute)}, nil
	}, 10*time.Second)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tok, err := cache.Token(ctx)
		if err != nil || tok != "tok-1" {
			t.Fatalf("expected cached tok-1, got %s, %v", tok, err)
		}
	}

	// inside the margin the token is refreshed
	now = now.Add(51 * time.Second)
	tok, _ := cache.Token(ctx)
	if tok != "tok-2" || calls != 2 {
		t.Errorf("expected refresh inside margin, got %s after %d calls", tok, calls)
	}
}

func TestTokenCacheError(t *testing.T) {
	cache := NewTokenCache(func(context.Context) (*oauth2.Token, error) {
		return nil, errors.New("denied")
	}, time.Second)

	if _, err := cache.Token(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestTwitchLive(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			tokenCalls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"abc","expires_in":3600,"token_type":"bearer"}`)
		case "/streams":
			if r.Header.Get("Authorization") != "Bearer abc" || r.Header.Get("Client-ID") != "cid" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if got := r.URL.Query()["user_login"]; len(got) != 2 {
				http.Error(w, "bad logins", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"data":[{"user_login":"VantaXXtv","title":"ranked","game_name":"Rocket League","started_at":"2025-01-01T00:00:00Z","viewer_count":12}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tw := &Twitch{client: NewClient(), clientID: "cid", baseURL: srv.URL, logger: nop}
	cc := &clientcredentials.Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tw.tokens = NewTokenCache(cc.Token, 10*time.Second)

	for i := 0; i < 2; i++ {
		got := tw.Live(context.Background(), []string{"vantaxxtv", "drift"})
		if !got.OK {
			t.Fatalf("expected ok, got %+v", got)
		}
		if diff := cmp.Diff(map[string]bool{"vantaxxtv": true, "drift": false}, got.Live); diff != "" {
			t.Errorf("live mismatch:\n%s", diff)
		}
		if got.Channels["vantaxxtv"].ViewerCount != 12 {
			t.Errorf("expected channel metadata, got %+v", got.Channels)
		}
	}
	if tokenCalls.Load() != 1 {
		t.Errorf("expected one token request, got %d", tokenCalls.Load())
	}
}

func TestTwitchFailureIsNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tw := &Twitch{client: NewClient(), clientID: "cid", baseURL: srv.URL, logger: nop}
	tw.tokens = NewTokenCache(func(context.Context) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "x", Expiry: time.Now().Add(time.Hour)}, nil
	}, time.Second)

	got := tw.Live(context.Background(), []string{"a"})
	if got.OK || got.Reason == "" {
		t.Errorf("expected ok:false with reason, got %+v", got)
	}
}

func TestTwitchEmptyHandles(t *testing.T) {
	tw := &Twitch{logger: nop}
	got := tw.Live(context.Background(), []string{" ", ""})
	if !got.OK || len(got.Live) != 0 || got.Live == nil {
		t.Errorf("expected empty ok result, got %+v", got)
	}
}

func ip(v int) *int { return &v }

func TestMatchResult(t *testing.T) {
	tests := []struct {
		blue, orange *int
		want         string
	}{
		{ip(3), ip(1), "win"},
		{ip(0), ip(2), "loss"},
		{ip(2), ip(2), "draw"},
		{nil, ip(2), ""},
		{ip(1), nil, ""},
	}
	for _, tt := range tests {
		got := MatchResult(tt.blue, tt.orange)
		if tt.want == "" {
			if got != nil {
				t.Errorf("expected nil result, got %s", *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("expected %s, got %v", tt.want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	for secs, want := range map[float64]string{0: "0:00", 65: "1:05", 299.9: "4:59", 600: "10:00"} {
		got := FormatDuration(&secs)
		if got == nil || *got != want {
			t.Errorf("FormatDuration(%v) = %v, want %s", secs, got, want)
		}
	}
	if FormatDuration(nil) != nil {
		t.Error("expected nil for missing duration")
	}
}

func TestRankParticipants(t *testing.T) {
	players := []Participant{
		{Name: "a", Score: 300, Goals: 1, Assists: 0},
		{Name: "b", Score: 400, Goals: 0, Assists: 0},
		{Name: "c", Score: 300, Goals: 2, Assists: 0},
		{Name: "d", Score: 300, Goals: 1, Assists: 3},
	}
	RankParticipants(players)

	var names []string
	for _, p := range players {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"b", "c", "d", "a"}, names); diff != "" {
		t.Error(diff)
	}
}

func TestBallchasingRecent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "key" {
			http.Error(w, "no key", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("group") != "grp" || r.URL.Query().Get("count") != "10" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"list":[
			{"id":"r1","date":"2025-01-01","map_name":"DFH Stadium","playlist_name":"Ranked Doubles","team_size":2,"season":14,"duration":312,
			 "blue":{"goals":3,"players":[{"name":"vanta","stats":{"core":{"score":520,"goals":2,"assists":1,"saves":3}}},{"name":"Drift","stats":{"core":{"score":300,"goals":1}}}]},
			 "orange":{"goals":1,"players":[{"name":"opp","stats":{"core":{"score":520,"goals":1,"assists":0}}}]}},
			{"id":"r2","created":"2025-01-02","blue":{},"orange":{"goals":2}}
		]}`)
	}))
	defer srv.Close()

	bc := &Ballchasing{client: NewClient(), apiKey: "key", baseURL: srv.URL, logger: nop}
	got := bc.Recent(context.Background(), "grp", 10)

	if !got.OK || got.Note != "Source: ballchasing.com (group filtered)" || len(got.Items) != 2 {
		t.Fatalf("unexpected result %+v", got)
	}

	first := got.Items[0]
	if *first.Result != "win" || *first.Duration != "5:12" || *first.Season != "Season 14" || *first.TeamSize != 2 {
		t.Errorf("unexpected first replay %+v", first)
	}
	if *first.TopPlayer != "vanta" || first.Note != "520 score • 2G 1A 3S" {
		t.Errorf("unexpected top player %s / %s", *first.TopPlayer, first.Note)
	}
	if *first.URL != "https://ballchasing.com/replay/r1" {
		t.Errorf("unexpected url %s", *first.URL)
	}

	second := got.Items[1]
	if second.Result != nil || second.TopPlayer != nil || second.Note != "" || *second.Date != "2025-01-02" {
		t.Errorf("unexpected second replay %+v", second)
	}
}

func TestBallchasingWithoutKey(t *testing.T) {
	bc := &Ballchasing{client: NewClient(), logger: nop}
	got := bc.Recent(context.Background(), "", 10)
	if got.OK || !strings.Contains(got.Reason, "BALLCHASING_API_KEY") {
		t.Errorf("expected unconfigured failure, got %+v", got)
	}
}

func TestFilterRepos(t *testing.T) {
	repos := []Repo{
		{Name: "site", FullName: "me/site", HTMLURL: "https://github.com/me/site"},
		{Name: "forked", HTMLURL: "https://github.com/me/forked", Fork: true},
		{Name: "old", HTMLURL: "https://github.com/me/old", Archived: true},
		{Name: "", HTMLURL: "https://github.com/me/x"},
		{Name: "sandbox", FullName: "me/sandbox", HTMLURL: "https://github.com/me/sandbox"},
		{Name: "TACNET", FullName: "me/TACNET", HTMLURL: "https://github.com/me/TACNET"},
	}

	names := func(rs []Repo) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter RepoFilter
		want   []string
	}{
		{"hygiene", RepoFilter{}, []string{"site", "sandbox", "TACNET"}},
		{"blocked", RepoFilter{Blocked: []string{"ME/SANDBOX"}}, []string{"site", "TACNET"}},
		{"pinned order", RepoFilter{Pinned: []string{"tacnet", "me/site", "missing", "forked"}}, []string{"TACNET", "site"}},
		{"pinned blocked", RepoFilter{Pinned: []string{"sandbox"}, Blocked: []string{"sandbox"}}, []string{}},
		{"truncate", RepoFilter{Max: 2}, []string{"site", "sandbox"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, names(FilterRepos(repos, tt.filter))); diff != "" {
				t.Errorf("FilterRepos mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGitHubProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			fmt.Fprint(w, `{"login":"me","public_repos":2,"html_url":"https://github.com/me"}`)
		case "/users/me/repos":
			fmt.Fprint(w, `[{"name":"a","html_url":"https://github.com/me/a"},{"name":"b","html_url":"https://github.com/me/b","fork":true}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gh := &GitHub{client: NewClient(), baseURL: srv.URL, logger: nop}
	got := gh.Profile(context.Background(), "me", RepoFilter{Max: 12})
	if !got.OK || got.User == nil || got.User.Login != "me" || len(got.Repos) != 1 || got.Repos[0].Name != "a" {
		t.Errorf("unexpected profile %+v", got)
	}

	missing := gh.Profile(context.Background(), "ghost", RepoFilter{})
	if missing.OK || missing.Reason == "" {
		t.Errorf("expected failure for unknown user, got %+v", missing)
	}
}

func TestLanyardPresence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/42" {
			fmt.Fprint(w, `{"success":false}`)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":{"discord_user":{"username":"vanta"},"discord_status":"dnd",
			"activities":[{"name":"Spotify","type":2},{"name":"Visual Studio Code","details":"Editing main.go","type":0}]}}`)
	}))
	defer srv.Close()

	l := &Lanyard{client: NewClient(), baseURL: srv.URL, logger: nop}

	got := l.Presence(context.Background(), "42")
	if !got.OK || got.Status != "dnd" || got.Username != "vanta" {
		t.Fatalf("unexpected presence %+v", got)
	}
	if got.Activity == nil || got.Activity.Name != "Visual Studio Code" || *got.Activity.Details != "Editing main.go" {
		t.Errorf("expected editor activity, got %+v", got.Activity)
	}

	if bad := l.Presence(context.Background(), "7"); bad.OK {
		t.Errorf("expected failure, got %+v", bad)
	}
}

func TestPrimaryActivity(t *testing.T) {
	if PrimaryActivity(nil) != nil {
		t.Error("expected nil without activities")
	}
	got := PrimaryActivity([]Activity{{Name: "Game"}, {Name: "Chess"}})
	if got.Name != "Game" {
		t.Errorf("expected first activity, got %s", got.Name)
	}
}
