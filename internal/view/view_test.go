package view

import (
	"net/url"
	"testing"
	"time"

	"vanta-site/internal/domain"

	"github.com/google/go-cmp/cmp"
)

var base = time.Date(2025, 12, 26, 18, 0, 0, 0, time.UTC)

func testMarket() *domain.Marketplace {
	return &domain.Marketplace{
		Users: []domain.User{
			{ID: 1, Name: "Ben Dover", Email: "ben@gmale.com"},
			{ID: 2, Name: "Phil McCraken", Email: "phil@gmale.com"},
		},
		Items: []domain.Item{
			{ID: 1, SellerID: 1, Title: "Toaster", Description: "quantum", PriceCents: 500, CreatedAt: base},
			{ID: 2, SellerID: 2, Title: "Opinions", Description: "organic", PriceCents: 100, CreatedAt: base.Add(time.Minute)},
			{ID: 3, SellerID: 1, Title: "Screwdriver", Description: "left handed", PriceCents: 300, CreatedAt: base.Add(2 * time.Minute)},
			{ID: 4, SellerID: 9, Title: "Orphan", Description: "no seller", PriceCents: 200, CreatedAt: base.Add(3 * time.Minute)},
		},
		Orders: []domain.Order{
			{ID: 1, BuyerID: 2, ItemID: 1, PriceCents: 500, CreatedAt: base.Add(time.Hour)},
			{ID: 2, BuyerID: 2, ItemID: 77, PriceCents: 50, CreatedAt: base.Add(2 * time.Hour)},
			{ID: 3, BuyerID: 1, ItemID: 2, PriceCents: 100, CreatedAt: base.Add(30 * time.Minute)},
		},
	}
}

func ids(ls []Listing) []int {
	out := make([]int, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func TestItemsSort(t *testing.T) {
	doc := testMarket()

	tests := []struct {
		sort Sort
		want []int
	}{
		{SortNewest, []int{4, 3, 2, 1}},
		{SortPriceAsc, []int{2, 4, 3, 1}},
		{SortPriceDesc, []int{1, 3, 4, 2}},
		{"bogus", []int{4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got := ids(Items(doc, State{Sort: tt.sort}))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Items() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestItemsPriceOrdersAreReversed(t *testing.T) {
	doc := testMarket()

	asc := ids(Items(doc, State{Sort: SortPriceAsc}))
	desc := ids(Items(doc, State{Sort: SortPriceDesc}))

	for i := range asc {
		if asc[i] != desc[len(desc)-1-i] {
			t.Fatalf("expected reversed sequences, got %v and %v", asc, desc)
		}
	}
}

func TestItemsStableOnTies(t *testing.T) {
	doc := &domain.Marketplace{Items: []domain.Item{
		{ID: 1, PriceCents: 100, CreatedAt: base},
		{ID: 2, PriceCents: 100, CreatedAt: base},
		{ID: 3, PriceCents: 50, CreatedAt: base},
		{ID: 4, PriceCents: 100, CreatedAt: base},
	}}

	for _, s := range []Sort{SortNewest, SortPriceAsc, SortPriceDesc} {
		first := ids(Items(doc, State{Sort: s}))
		second := ids(Items(doc, State{Sort: s}))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s: derive is not idempotent:\n%s", s, diff)
		}
	}

	if diff := cmp.Diff([]int{1, 2, 4, 3}, ids(Items(doc, State{Sort: SortPriceDesc}))); diff != "" {
		t.Errorf("equal prices must keep document order:\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, ids(Items(doc, State{Sort: SortNewest}))); diff != "" {
		t.Errorf("equal timestamps must keep document order:\n%s", diff)
	}
}

func TestItemsQuery(t *testing.T) {
	doc := testMarket()

	tests := []struct {
		query string
		want  []int
	}{
		{"", []int{4, 3, 2, 1}},
		{"TOASTER", []int{1}},
		{"  organic ", []int{2}},
		{"phil@", []int{2}},
		{"ben dover", []int{3, 1}},
		{"dover ben", []int{}},
		{"unknown", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := ids(Items(doc, State{Query: tt.query}))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Items(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestItemsDoesNotMutateDocument(t *testing.T) {
	doc := testMarket()
	before := ids(Items(doc, State{}))
	_ = Items(doc, State{Sort: SortPriceAsc})

	if doc.Items[0].ID != 1 || doc.Items[3].ID != 4 {
		t.Errorf("document order changed: %v", doc.Items)
	}
	if diff := cmp.Diff(before, ids(Items(doc, State{}))); diff != "" {
		t.Errorf("unexpected reorder:\n%s", diff)
	}
}

func TestSellerItems(t *testing.T) {
	got := ids(SellerItems(testMarket(), State{Sort: SortPriceAsc}, 1))
	if diff := cmp.Diff([]int{3, 1}, got); diff != "" {
		t.Errorf("SellerItems mismatch:\n%s", diff)
	}
}

func TestOrders(t *testing.T) {
	doc := testMarket()

	mine := BuyerOrders(doc, 2)
	if len(mine) != 2 || mine[0].ID != 2 || mine[1].ID != 1 {
		t.Fatalf("unexpected buyer orders %+v", mine)
	}
	if mine[0].ItemTitle != "Deleted Item" || mine[0].SellerName != "Unknown" {
		t.Errorf("missing item should render placeholders, got %+v", mine[0])
	}
	if mine[1].SellerName != "Ben Dover" || mine[1].ItemTitle != "Toaster" {
		t.Errorf("unexpected resolved row %+v", mine[1])
	}

	recent := RecentOrders(doc, 2)
	if len(recent) != 2 || recent[0].ID != 2 || recent[1].ID != 1 {
		t.Errorf("unexpected recent orders %+v", recent)
	}
	if recent[0].BuyerName != "Phil McCraken" {
		t.Errorf("expected buyer name, got %s", recent[0].BuyerName)
	}
}

func TestMarketStats(t *testing.T) {
	if diff := cmp.Diff(Stats{Users: 2, Listings: 4, Orders: 3}, MarketStats(testMarket())); diff != "" {
		t.Error(diff)
	}
}

func TestStateRoundTrip(t *testing.T) {
	st := StateFromQuery(url.Values{"route": {"MY-ORDERS"}, "q": {"cable"}, "sort": {"price_desc"}})
	want := State{Route: RouteMyOrders, Query: "cable", Sort: SortPriceDesc}
	if st != want {
		t.Fatalf("got %+v, want %+v", st, want)
	}
	if got := StateFromQuery(st.Values()); got != want {
		t.Errorf("round trip got %+v", got)
	}

	def := StateFromQuery(url.Values{"route": {"nowhere"}, "sort": {"new"}})
	if def.Route != RouteMarket || def.Sort != SortNewest {
		t.Errorf("expected defaults, got %+v", def)
	}
	if len(def.Values()) != 0 {
		t.Errorf("defaults should encode to nothing, got %v", def.Values())
	}
}

func mmr(v float64) *float64 { return &v }

func testTeam() *domain.Team {
	return &domain.Team{Players: []domain.Player{
		{Name: "vanta", Twitch: "VantaXXtv", Ranks: map[string]domain.Rank{
			"2v2": {Rank: "Champion II", MMR: mmr(1270)},
			"3v3": {Rank: "Champion III", MMR: mmr(1355)},
		}},
		{Name: "Drift", Ranks: map[string]domain.Rank{
			"1v1": {Rank: "Diamond III", MMR: mmr(1010)},
			"3v3": {MMR: mmr(1290)},
		}},
		{Name: "Kestrel", Twitch: "kes", Ranks: map[string]domain.Rank{}},
	}}
}

func TestPlayers(t *testing.T) {
	team := testTeam()
	live := map[string]bool{"vantaxxtv": true}

	all := Players(team, "", live)
	if len(all) != 3 || all[0].Index != 0 || all[2].Index != 2 {
		t.Fatalf("unexpected roster %+v", all)
	}
	if !all[0].Live || all[2].Live {
		t.Errorf("unexpected live flags %v %v", all[0].Live, all[2].Live)
	}
	if LiveCount(all) != 1 {
		t.Errorf("expected one live player")
	}

	byHandle := Players(team, "KES", live)
	if len(byHandle) != 1 || byHandle[0].Index != 2 {
		t.Errorf("expected Kestrel by handle, got %+v", byHandle)
	}
}

func TestBestRank(t *testing.T) {
	team := testTeam()
	want := []string{"Champion III", "Diamond III", "Unranked"}
	for i, p := range team.Players {
		if got := BestRank(p); got != want[i] {
			t.Errorf("player %d: got %s, want %s", i, got, want[i])
		}
	}
}

func TestTeamAverages(t *testing.T) {
	avg := TeamAverages(testTeam().Players)
	if avg.TwoVTwo == nil || *avg.TwoVTwo != 1270 {
		t.Errorf("unexpected 2v2 average %v", avg.TwoVTwo)
	}
	if avg.ThreeVThree == nil || *avg.ThreeVThree != 1323 {
		t.Errorf("unexpected 3v3 average %v", avg.ThreeVThree)
	}

	none := TeamAverages([]domain.Player{{Name: "x"}})
	if none.TwoVTwo != nil || none.ThreeVThree != nil {
		t.Errorf("expected no averages, got %+v", none)
	}
}

func TestHandles(t *testing.T) {
	team := testTeam()
	team.Players = append(team.Players, domain.Player{Name: "dup", Twitch: " vantaxxtv "})

	if diff := cmp.Diff([]string{"vantaxxtv", "kes"}, Handles(team)); diff != "" {
		t.Error(diff)
	}
}

func TestProjects(t *testing.T) {
	all := domain.Projects()

	if got := Projects(all, "All"); len(got) != len(all) {
		t.Errorf("All should pass everything, got %d", len(got))
	}
	if got := Projects(all, "applications"); len(got) != 1 || got[0].Title != "TACNET" {
		t.Errorf("unexpected filter result %+v", got)
	}
	if got := Projects(all, "Security"); len(got) != 0 {
		t.Errorf("expected no security projects, got %d", len(got))
	}
}
