package view

import (
	"cmp"
	"slices"
	"strings"

	"vanta-site/internal/domain"
)

const (
	unknownUser = "Unknown"
	deletedItem = "Deleted Item"
)

type Listing struct {
	domain.Item
	SellerName   string `json:"sellerName"`
	SellerEmail  string `json:"sellerEmail"`
	SellerAvatar string `json:"sellerAvatar"`
}

type OrderRow struct {
	domain.Order
	ItemTitle   string `json:"itemTitle"`
	BuyerName   string `json:"buyerName"`
	BuyerEmail  string `json:"buyerEmail"`
	SellerName  string `json:"sellerName"`
	SellerEmail string `json:"sellerEmail"`
}

type Stats struct {
	Users    int `json:"users"`
	Listings int `json:"listings"`
	Orders   int `json:"orders"`
}

// Items filters by title, description or seller "name email" and orders per st.Sort.
// Equal keys keep document order.
func Items(doc *domain.Marketplace, st State) []Listing {
	users := make(map[int]*domain.User, len(doc.Users))
	for i := range doc.Users {
		users[doc.Users[i].ID] = &doc.Users[i]
	}

	q := needle(st.Query)
	out := make([]Listing, 0, len(doc.Items))
	for _, it := range doc.Items {
		l := Listing{Item: it, SellerName: unknownUser}
		if u := users[it.SellerID]; u != nil {
			l.SellerName, l.SellerEmail, l.SellerAvatar = u.Name, u.Email, u.Avatar
		}
		if q != "" && !matchesListing(l, users[it.SellerID] != nil, q) {
			continue
		}
		out = append(out, l)
	}

	switch ParseSort(string(st.Sort)) {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Listing) int { return cmp.Compare(a.PriceCents, b.PriceCents) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Listing) int { return cmp.Compare(b.PriceCents, a.PriceCents) })
	default:
		slices.SortStableFunc(out, func(a, b Listing) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}
	return out
}

func matchesListing(l Listing, hasSeller bool, q string) bool {
	if strings.Contains(strings.ToLower(l.Title), q) || strings.Contains(strings.ToLower(l.Description), q) {
		return true
	}
	return hasSeller && strings.Contains(strings.ToLower(l.SellerName+" "+l.SellerEmail), q)
}

// SellerItems is the market view restricted to one seller's listings.
func SellerItems(doc *domain.Marketplace, st State, sellerID int) []Listing {
	all := Items(doc, st)
	out := all[:0]
	for _, l := range all {
		if l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	return out
}

// BuyerOrders lists buyerID's orders, newest first.
func BuyerOrders(doc *domain.Marketplace, buyerID int) []OrderRow {
	var mine []domain.Order
	for _, o := range doc.Orders {
		if o.BuyerID == buyerID {
			mine = append(mine, o)
		}
	}
	return orderRows(doc, mine, 0)
}

// RecentOrders lists the newest orders across all buyers, at most limit of them.
func RecentOrders(doc *domain.Marketplace, limit int) []OrderRow {
	return orderRows(doc, doc.Orders, limit)
}

func orderRows(doc *domain.Marketplace, orders []domain.Order, limit int) []OrderRow {
	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(a, b domain.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]OrderRow, 0, len(sorted))
	for _, o := range sorted {
		row := OrderRow{Order: o, ItemTitle: deletedItem, BuyerName: unknownUser, SellerName: unknownUser}
		if b := doc.User(o.BuyerID); b != nil {
			row.BuyerName, row.BuyerEmail = b.Name, b.Email
		}
		if it := doc.Item(o.ItemID); it != nil {
			row.ItemTitle = it.Title
			if s := doc.User(it.SellerID); s != nil {
				row.SellerName, row.SellerEmail = s.Name, s.Email
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func MarketStats(doc *domain.Marketplace) Stats {
	return Stats{Users: len(doc.Users), Listings: len(doc.Items), Orders: len(doc.Orders)}
}
