package domain

import (
	"time"
)

const (
	Bracket1v1 = "1v1"
	Bracket2v2 = "2v2"
	Bracket3v3 = "3v3"
)

// Brackets in display order.
var Brackets = []string{Bracket1v1, Bracket2v2, Bracket3v3}

type Team struct {
	TeamName    string            `json:"teamName"`
	Region      string            `json:"region"`
	Logo        string            `json:"logo"`
	Players     []Player          `json:"players"`
	Snapshots   []Snapshot        `json:"snapshots"`
	Ballchasing BallchasingConfig `json:"ballchasing"`
}

type BallchasingConfig struct {
	GroupID string `json:"groupId"`
}

type Player struct {
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Platform   string `json:"platform,omitempty"`
	Twitch     string `json:"twitch,omitempty"`
	TrackerURL string `json:"trackerUrl,omitempty"`

	// a missing bracket means unranked
	Ranks map[string]Rank `json:"ranks"`
}

type Rank struct {
	Rank string   `json:"rank,omitempty"`
	MMR  *float64 `json:"mmr,omitempty"`
}

// RankInput is a bracket entry as submitted by the admin form; nil fields are ignored on merge.
type RankInput struct {
	Rank *string  `json:"rank"`
	MMR  *float64 `json:"mmr"`
}

// Snapshot is append-only history, never edited after creation.
type Snapshot struct {
	CreatedAt time.Time             `json:"createdAt"`
	Player    string                `json:"player"`
	Ranks     map[string]*RankInput `json:"ranks"`
}

const (
	StatusAvailable = "available"
	StatusSold      = "sold"
)

// MaxPriceCents caps listing prices ($10,000.00).
const MaxPriceCents = 10_000_00

type Marketplace struct {
	Users  []User  `json:"users"`
	Items  []Item  `json:"items"`
	Orders []Order `json:"orders"`

	// high-water marks so deleted ids are never handed out again
	Seq *Sequences `json:"seq,omitempty"`
}

type Sequences struct {
	Users  int `json:"users"`
	Items  int `json:"items"`
	Orders int `json:"orders"`
}

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PassHash  string    `json:"passHash"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type Item struct {
	ID          int       `json:"id"`
	SellerID    int       `json:"sellerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int       `json:"priceCents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Order struct {
	ID         int       `json:"id"`
	BuyerID    int       `json:"buyerId"`
	ItemID     int       `json:"itemId"`
	PriceCents int       `json:"priceCents"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Session identifies who is acting; it lives apart from the marketplace document.
type Session struct {
	UserID    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *Marketplace) User(id int) *User {
	for i := range m.Users {
		if m.Users[i].ID == id {
			return &m.Users[i]
		}
	}
	return nil
}

func (m *Marketplace) Item(id int) *Item {
	for i := range m.Items {
		if m.Items[i].ID == id {
			return &m.Items[i]
		}
	}
	return nil
}

func (m *Marketplace) sequences() *Sequences {
	if m.Seq == nil {
		m.Seq = &Sequences{}
	}
	return m.Seq
}

// NextUserID returns an id greater than every id ever assigned to a user and records it.
func (m *Marketplace) NextUserID() int {
	seq := m.sequences()
	seq.Users = nextID(seq.Users, len(m.Users), func(i int) int { return m.Users[i].ID })
	return seq.Users
}

func (m *Marketplace) NextItemID() int {
	seq := m.sequences()
	seq.Items = nextID(seq.Items, len(m.Items), func(i int) int { return m.Items[i].ID })
	return seq.Items
}

func (m *Marketplace) NextOrderID() int {
	seq := m.sequences()
	seq.Orders = nextID(seq.Orders, len(m.Orders), func(i int) int { return m.Orders[i].ID })
	return seq.Orders
}

func nextID(highWater, n int, id func(int) int) int {
	top := highWater
	for i := 0; i < n; i++ {
		if v := id(i); v > top {
			top = v
		}
	}
	return top + 1
}
