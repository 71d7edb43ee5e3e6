// Package view derives display-ready sequences from documents. Every function is pure.
package view

import (
	"net/url"
	"strings"
)

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
)

type Route string

const (
	RouteMarket       Route = "market"
	RouteMyListings   Route = "my-listings"
	RouteMyOrders     Route = "my-orders"
	RouteRecentOrders Route = "recent-orders"
)

// State is the page state a request carries: which view, what to match, how to order.
type State struct {
	Route Route
	Query string
	Sort  Sort
}

// ParseSort falls back to newest for anything unrecognised. "new" is accepted as an alias.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	default:
		return SortNewest
	}
}

func ParseRoute(s string) Route {
	switch r := Route(strings.ToLower(strings.TrimSpace(s))); r {
	case RouteMyListings, RouteMyOrders, RouteRecentOrders:
		return r
	default:
		return RouteMarket
	}
}

func StateFromQuery(q url.Values) State {
	return State{
		Route: ParseRoute(q.Get("route")),
		Query: q.Get("q"),
		Sort:  ParseSort(q.Get("sort")),
	}
}

// Values encodes the state back into query parameters, omitting defaults.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Route != "" && s.Route != RouteMarket {
		v.Set("route", string(s.Route))
	}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	if s.Sort != "" && s.Sort != SortNewest {
		v.Set("sort", string(s.Sort))
	}
	return v
}

func needle(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
