package render

import (
	"time"

	"vanta-site/internal/api"
	"vanta-site/internal/constants"
	"vanta-site/internal/domain"
	"vanta-site/internal/view"
)

type Link struct {
	Label  string
	Value  string
	Href   string
	Active bool
}

type MarketPage struct {
	State view.State
	Actor *domain.User
	Now   time.Time

	Stats    view.Stats
	Listings []view.Listing
	Orders   []view.OrderRow

	// NeedsLogin is set when the route shows the actor's own records and nobody is logged in.
	NeedsLogin bool

	Routes []Link
	Sorts  []Link
}

var routeLabels = []struct {
	route view.Route
	label string
}{
	{view.RouteMarket, "Market"},
	{view.RouteMyListings, "My listings"},
	{view.RouteMyOrders, "My orders"},
	{view.RouteRecentOrders, "Recent orders"},
}

var sortLabels = []struct {
	sort  view.Sort
	label string
}{
	{view.SortNewest, "Newest"},
	{view.SortPriceAsc, "Price: low to high"},
	{view.SortPriceDesc, "Price: high to low"},
}

// BuildMarketPage derives everything the marketplace page shows from the document and st.
func BuildMarketPage(doc *domain.Marketplace, st view.State, actor *domain.User, now time.Time) MarketPage {
	st.Route = view.ParseRoute(string(st.Route))
	st.Sort = view.ParseSort(string(st.Sort))

	page := MarketPage{
		State: st,
		Actor: actor,
		Now:   now,
		Stats: view.MarketStats(doc),
	}

	switch st.Route {
	case view.RouteMyListings:
		if actor == nil {
			page.NeedsLogin = true
			break
		}
		page.Listings = view.SellerItems(doc, st, actor.ID)
	case view.RouteMyOrders:
		if actor == nil {
			page.NeedsLogin = true
			break
		}
		page.Orders = view.BuyerOrders(doc, actor.ID)
	case view.RouteRecentOrders:
		page.Orders = view.RecentOrders(doc, constants.RecentOrdersLimit)
	default:
		page.Listings = view.Items(doc, st)
	}

	for _, r := range routeLabels {
		next := st
		next.Route = r.route
		page.Routes = append(page.Routes, Link{Label: r.label, Value: string(r.route), Href: href("/market", next), Active: r.route == st.Route})
	}
	for _, s := range sortLabels {
		next := st
		next.Sort = s.sort
		page.Sorts = append(page.Sorts, Link{Label: s.label, Value: string(s.sort), Href: href("/market", next), Active: s.sort == st.Sort})
	}
	return page
}

func href(path string, st view.State) string {
	if q := st.Values().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

type TeamPage struct {
	Team      *domain.Team
	Query     string
	Now       time.Time
	Cards     []view.PlayerCard
	Averages  view.Averages
	LiveCount int

	// Live is nil until the first live-status poll succeeds.
	Live      *api.LiveStatus
	Snapshots []domain.Snapshot
}

const recentSnapshots = 5

// BuildTeamPage filters the roster by query and marks players found live in status.
func BuildTeamPage(team *domain.Team, query string, status *api.LiveStatus, now time.Time) TeamPage {
	var live map[string]bool
	if status != nil && status.OK {
		live = status.Live
	}
	cards := view.Players(team, query, live)

	// newest first
	snaps := make([]domain.Snapshot, 0, recentSnapshots)
	for i := len(team.Snapshots) - 1; i >= 0 && len(snaps) < recentSnapshots; i-- {
		snaps = append(snaps, team.Snapshots[i])
	}

	return TeamPage{
		Team:      team,
		Query:     query,
		Now:       now,
		Cards:     cards,
		Averages:  view.TeamAverages(team.Players),
		LiveCount: view.LiveCount(cards),
		Live:      status,
		Snapshots: snaps,
	}
}
