package domain

import "time"

func mmr(v float64) *float64 { return &v }

// SeedTeam is the roster written the first time no team.json exists.
func SeedTeam() Team {
	return Team{
		TeamName: "VANTA",
		Region:   "NA East",
		Logo:     "./assets/logo-vanta.svg",
		Players: []Player{
			{
				Name:     "vanta",
				Role:     "Captain",
				Platform: "Epic",
				Twitch:   "vantaxxtv",
				Ranks: map[string]Rank{
					Bracket2v2: {Rank: "Champion II", MMR: mmr(1270)},
					Bracket3v3: {Rank: "Champion III", MMR: mmr(1355)},
				},
			},
			{
				Name:     "Drift",
				Role:     "Striker",
				Platform: "Steam",
				Ranks: map[string]Rank{
					Bracket1v1: {Rank: "Diamond III", MMR: mmr(1010)},
					Bracket3v3: {Rank: "Champion II", MMR: mmr(1290)},
				},
			},
			{
				Name:     "Kestrel",
				Role:     "Support",
				Platform: "PlayStation",
				Ranks:    map[string]Rank{},
			},
		},
		Snapshots: []Snapshot{},
	}
}

// SeedMarketplace builds the demo marketplace. digest hashes the demo passwords.
func SeedMarketplace(now time.Time, digest func(string) string) Marketplace {
	created := time.Date(2025, 12, 26, 18, 4, 12, 994_000_000, time.UTC)
	at := func(minutes int) time.Time { return created.Add(time.Duration(minutes) * time.Minute) }

	users := []User{
		{ID: 1, Name: "Ben Dover", Email: "ben@gmale.com", Avatar: "😑"},
		{ID: 2, Name: "Phil McCraken", Email: "phil@gmale.com", Avatar: "🫠"},
		{ID: 3, Name: "Dixie Normous", Email: "dixie@gmale.com", Avatar: "🙃"},
		{ID: 4, Name: "Hugh Jass", Email: "hugh@gmale.com", Avatar: "🧪"},
		{ID: 5, Name: "Questionable Quality Cars", Email: "sales@qqc.com", Avatar: "🗂️"},
		{ID: 6, Name: "vanta", Email: "vanta@vantaproject.space", Avatar: "🤖"},
	}
	for i := range users {
		password := "password"
		if users[i].ID == 6 {
			password = "unsecure-password"
		}
		users[i].PassHash = digest(password)
		users[i].CreatedAt = now
	}

	items := []Item{
		{ID: 1, SellerID: 1, Title: "Quantum Toaster (Schrödinger Edition)", Description: "It is both toasted and not toasted until you open the lid. Warning: may collapse reality into crumbs.", PriceCents: 25069, CreatedAt: at(0)},
		{ID: 2, SellerID: 2, Title: "Bucket of Freshly Curated Opinions", Description: "Organic, free-range opinions. Great for family dinners. May cause unstoppable rage.", PriceCents: 1069, CreatedAt: at(20)},
		{ID: 3, SellerID: 3, Title: "Left-Handed Screwdriver", Description: "I am selling my left-handed screwdriver for screws that spin the wrong way.", PriceCents: 2069, CreatedAt: at(30)},
		{ID: 4, SellerID: 4, Title: "Extension Cord", Description: "Always six inches short of where I need it. Selling because I refuse to rearrange furniture again.", PriceCents: 1969, CreatedAt: at(45)},
		{ID: 5, SellerID: 3, Title: "HDMI Cable", Description: "Functions perfectly until someone important is watching. Selling because I don’t trust it during presentations.", PriceCents: 2569, CreatedAt: at(65)},
		{ID: 6, SellerID: 2, Title: "Unsolicited Advice", Description: "I keep giving this away for free and people keep asking me to stop. Figured I’d try monetizing it. No refunds, I will still have opinions. If you purchase this you can reach me to recieve your unsolicited advice at any time on instagram @vantaxxtv", PriceCents: 269, CreatedAt: at(80)},
		{ID: 7, SellerID: 3, Title: "Invisible Ink Printer", Description: "Technically works. Prints absolutely nothing, flawlessly. Great if you’re into minimalism or avoiding documentation.", PriceCents: 2069, CreatedAt: at(95)},
		{ID: 8, SellerID: 4, Title: "Keyboard With Only ‘Ctrl’ Keys", Description: "Every single key is Ctrl. I assumed muscle memory would carry me through. It did not. Technically functional if your workflow is 90% undoing mistakes.", PriceCents: 1569, CreatedAt: at(110)},
		{ID: 9, SellerID: 1, Title: "Confidence (Slightly Used)", Description: "Had more of this before meetings. Still functional, just quieter.", PriceCents: 469, CreatedAt: at(110)},
		{ID: 10, SellerID: 2, Title: "Paper Shredder", Description: "Shreds junk mail flawlessly. Jams immediately on anything important.", PriceCents: 1069, CreatedAt: at(110)},
		{ID: 11, SellerID: 5, Title: "2016 Volkswagen Passat", Description: "Starts every morning after a brief pause to consider the day. AC works on settings 1 and 5 only. Check engine light comes on occasionally for self-expression. Selling because we’ve both grown and need different things now.", PriceCents: 420000, CreatedAt: at(110)},
		{ID: 12, SellerID: 5, Title: "2014 Ford Focus", Description: "Smooth ride. Plenty of space. Dashboard lights up like a Christmas tree but the mechanic says “it’s fine.” I trust him more than the lights.", PriceCents: 950000, CreatedAt: at(110)},
		{ID: 13, SellerID: 5, Title: "2004 Ram 1500", Description: "Not pretty. Not quiet. Has hauled things it probably shouldn’t have. Refuses to die out of spite.", PriceCents: 560000, CreatedAt: at(110)},
	}
	for i := range items {
		items[i].Status = StatusAvailable
	}

	m := Marketplace{Users: users, Items: items, Orders: []Order{}}

	// every sold seed item gets its order at the listed price
	for _, sale := range []struct {
		buyer, item, minutesAgo int
	}{
		{buyer: 1, item: 6, minutesAgo: 25},
		{buyer: 2, item: 9, minutesAgo: 18},
	} {
		it := m.Item(sale.item)
		it.Status = StatusSold
		m.Orders = append(m.Orders, Order{
			ID:         len(m.Orders) + 1,
			BuyerID:    sale.buyer,
			ItemID:     it.ID,
			PriceCents: it.PriceCents,
			CreatedAt:  now.Add(-time.Duration(sale.minutesAgo) * time.Minute),
		})
	}

	return m
}
