package view

import (
	"math"
	"strings"

	"vanta-site/internal/domain"
)

type PlayerCard struct {
	// Index is the player's position in the team document, used to address snapshots.
	Index  int           `json:"index"`
	Player domain.Player `json:"player"`
	Best   string        `json:"bestRank"`
	Live   bool          `json:"live"`
}

type Averages struct {
	TwoVTwo     *int `json:"avg2"`
	ThreeVThree *int `json:"avg3"`
}

// Players filters the roster by name or twitch handle. Document order is kept.
func Players(team *domain.Team, query string, live map[string]bool) []PlayerCard {
	q := needle(query)
	out := make([]PlayerCard, 0, len(team.Players))
	for i, p := range team.Players {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Twitch), q) {
			continue
		}
		out = append(out, PlayerCard{
			Index:  i,
			Player: p,
			Best:   BestRank(p),
			Live:   p.Twitch != "" && live[strings.ToLower(p.Twitch)],
		})
	}
	return out
}

// BestRank prefers 3v3, then 2v2, then 1v1.
func BestRank(p domain.Player) string {
	for _, b := range []string{domain.Bracket3v3, domain.Bracket2v2, domain.Bracket1v1} {
		if r, ok := p.Ranks[b]; ok && r.Rank != "" {
			return r.Rank
		}
	}
	return "Unranked"
}

// TeamAverages is the rounded mean 2v2 and 3v3 MMR over players that have one.
func TeamAverages(players []domain.Player) Averages {
	return Averages{
		TwoVTwo:     meanMMR(players, domain.Bracket2v2),
		ThreeVThree: meanMMR(players, domain.Bracket3v3),
	}
}

func meanMMR(players []domain.Player, bracket string) *int {
	var sum float64
	var n int
	for _, p := range players {
		if r, ok := p.Ranks[bracket]; ok && r.MMR != nil {
			sum += *r.MMR
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := int(math.Floor(sum/float64(n) + 0.5))
	return &avg
}

func LiveCount(cards []PlayerCard) int {
	n := 0
	for _, c := range cards {
		if c.Live {
			n++
		}
	}
	return n
}

// Handles returns the roster's twitch handles, lower-cased and de-duplicated, in roster order.
func Handles(team *domain.Team) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range team.Players {
		h := strings.ToLower(strings.TrimSpace(p.Twitch))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
