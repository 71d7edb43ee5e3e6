package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"vanta-site/internal/blob"
	"vanta-site/internal/constants"
	"vanta-site/internal/domain"
	"vanta-site/internal/pubsub"
	"vanta-site/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const minPasswordLen = 4

var (
	priceJunk = regexp.MustCompile(`[^0-9.]`)
	hundred   = decimal.NewFromInt(100)
)

// Publisher signals connected pages once a write has been persisted.
type Publisher interface {
	Publish(pubsub.Event)
}

type MarketDocuments = repository.DocumentStore[domain.Marketplace]

// NewMarketDocuments stores the marketplace under its fixed key, seeding the demo data on first load.
func NewMarketDocuments(store blob.Store, hasher *PasswordHasher, logger zerolog.Logger) *MarketDocuments {
	return repository.NewDocumentStore(store, repository.DocumentConfig[domain.Marketplace]{
		Key: constants.MarketplaceKey,
		Seed: func() domain.Marketplace {
			return domain.SeedMarketplace(time.Now().UTC(), hasher.Digest)
		},
		Valid: validMarketplace,
	}, logger)
}

func validMarketplace(m *domain.Marketplace) error {
	if m.Users == nil || m.Items == nil || m.Orders == nil {
		return errors.New("missing users/items/orders")
	}
	return nil
}

type MarketService struct {
	docs     *MarketDocuments
	sessions *repository.SessionStore
	hasher   *PasswordHasher
	events   Publisher
	now      func() time.Time
	logger   zerolog.Logger
}

func NewMarketService(docs *MarketDocuments, sessions *repository.SessionStore, hasher *PasswordHasher, events Publisher, logger zerolog.Logger) *MarketService {
	return &MarketService{
		docs:     docs,
		sessions: sessions,
		hasher:   hasher,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With().Str("service", "market").Logger(),
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ListingInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Emoji       string `json:"emoji"`
}

func (s *MarketService) Document(ctx context.Context) (*domain.Marketplace, error) {
	doc, err := s.docs.LoadOrSeed(ctx)
	if err != nil {
		return nil, loadError(err)
	}
	return doc, nil
}

// CurrentUser resolves the session token to a user. A missing session, or one
// pointing at a user that no longer exists, yields nil.
func (s *MarketService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, loadError(err)
	}
	if sess == nil {
		return nil, nil
	}

	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.User(sess.UserID), nil
}

func (s *MarketService) session(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, loadError(err)
	}
	if sess == nil {
		return nil, newError(KindUnauthorized, "Please log in to do that.")
	}
	return sess, nil
}

func actor(doc *domain.Marketplace, sess *domain.Session) (*domain.User, error) {
	u := doc.User(sess.UserID)
	if u == nil {
		return nil, newError(KindUnauthorized, "Please log in to do that.")
	}
	return u, nil
}

// update wraps DocumentStore.Update so write failures surface as persistence errors
// while domain errors from fn pass through untouched.
func (s *MarketService) update(ctx context.Context, fn func(*domain.Marketplace) error) (*domain.Marketplace, error) {
	var fnErr error
	doc, err := s.docs.Update(ctx, func(m *domain.Marketplace) error {
		fnErr = fn(m)
		return fnErr
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, persistenceError(err)
	}
	return doc, nil
}

func (s *MarketService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)

	if email == "" || in.Password == "" {
		return nil, "", newError(KindValidation, "Missing email or password.")
	}
	if name == "" {
		return nil, "", newError(KindValidation, "Please choose a display name.")
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", newError(KindValidation, fmt.Sprintf("Password must be at least %d characters.", minPasswordLen))
	}

	var user domain.User
	_, err := s.update(ctx, func(doc *domain.Marketplace) error {
		if findByEmail(doc, email) != nil {
			return newError(KindConflict, "That email is already registered.")
		}
		user = domain.User{
			ID:        doc.NextUserID(),
			Name:      name,
			Email:     email,
			PassHash:  s.hasher.Digest(in.Password),
			Avatar:    pickAvatar(name),
			CreatedAt: s.now(),
		}
		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID, s.now())
	if err != nil {
		return nil, "", persistenceError(err)
	}

	s.logger.Info().Int("user_id", user.ID).Msg("user registered")
	s.publish(pubsub.MarketUser, map[string]any{"userId": user.ID})
	return &user, token, nil
}

// Login tells a missing account apart from a wrong password, as the demo always has.
func (s *MarketService) Login(ctx context.Context, in LoginInput) (*domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, "", newError(KindValidation, "Missing email or password.")
	}

	doc, err := s.Document(ctx)
	if err != nil {
		return nil, "", err
	}

	u := findByEmail(doc, email)
	if u == nil {
		return nil, "", newError(KindNotFound, "No account with that email.")
	}
	if !s.hasher.Verify(in.Password, u.PassHash) {
		return nil, "", newError(KindUnauthorized, "Incorrect password.")
	}

	token, err := s.sessions.Create(ctx, u.ID, s.now())
	if err != nil {
		return nil, "", persistenceError(err)
	}

	s.logger.Info().Int("user_id", u.ID).Msg("user logged in")
	user := *u
	return &user, token, nil
}

// Logout clears only the session; the marketplace document is not touched.
func (s *MarketService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Clear(ctx, token); err != nil {
		return persistenceError(err)
	}
	return nil
}

func findByEmail(doc *domain.Marketplace, email string) *domain.User {
	for i := range doc.Users {
		if strings.EqualFold(doc.Users[i].Email, email) {
			return &doc.Users[i]
		}
	}
	return nil
}

// ParsePriceCents strips everything but digits and dots, then rounds to whole cents
// clamped to [1, MaxPriceCents].
func ParsePriceCents(raw string) (int, bool) {
	cleaned := priceJunk.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return 0, false
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil || !price.IsPositive() {
		return 0, false
	}

	cents := price.Mul(hundred).Round(0)
	switch {
	case cents.LessThan(decimal.NewFromInt(1)):
		return 1, true
	case cents.GreaterThan(decimal.NewFromInt(domain.MaxPriceCents)):
		return domain.MaxPriceCents, true
	}
	return int(cents.IntPart()), true
}

func (s *MarketService) CreateListing(ctx context.Context, token string, in ListingInput) (*domain.Item, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	cents, ok := ParsePriceCents(in.Price)
	if title == "" || description == "" || !ok {
		return nil, newError(KindValidation, "Please fill all fields correctly.")
	}

	var item domain.Item
	_, err = s.update(ctx, func(doc *domain.Marketplace) error {
		seller, err := actor(doc, sess)
		if err != nil {
			return err
		}
		if emoji := strings.TrimSpace(in.Emoji); emoji != "" {
			seller.Avatar = emoji
		}
		item = domain.Item{
			ID:          doc.NextItemID(),
			SellerID:    seller.ID,
			Title:       title,
			Description: description,
			PriceCents:  cents,
			Status:      domain.StatusAvailable,
			CreatedAt:   s.now(),
		}
		doc.Items = append(doc.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("item_id", item.ID).Int("seller_id", item.SellerID).Int("price_cents", cents).Msg("listing created")
	s.publish(pubsub.MarketListing, map[string]any{"itemId": item.ID})
	return &item, nil
}

// PlaceOrder flips the item to sold and appends its order in the same write.
// The order carries the item's price as it was at confirmation.
func (s *MarketService) PlaceOrder(ctx context.Context, token string, itemID int) (*domain.Order, error) {
	sess, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}

	var order domain.Order
	_, err = s.update(ctx, func(doc *domain.Marketplace) error {
		buyer, err := actor(doc, sess)
		if err != nil {
			return err
		}
		item := doc.Item(itemID)
		if item == nil {
			return newError(KindNotFound, "Item not found.")
		}
		if item.Status != domain.StatusAvailable {
			return newError(KindConflict, "That item is already sold.")
		}
		if item.SellerID == buyer.ID {
			return newError(KindForbidden, "You can’t buy your own listing.")
		}

		order = domain.Order{
			ID:         doc.NextOrderID(),
			BuyerID:    buyer.ID,
			ItemID:     item.ID,
			PriceCents: item.PriceCents,
			CreatedAt:  s.now(),
		}
		item.Status = domain.StatusSold
		doc.Orders = append(doc.Orders, order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("order_id", order.ID).Int("item_id", itemID).Int("buyer_id", order.BuyerID).Msg("order placed")
	s.publish(pubsub.MarketOrder, map[string]any{"itemId": itemID, "orderId": order.ID})
	return &order, nil
}

// RemoveListing hard-deletes an available listing owned by the actor.
func (s *MarketService) RemoveListing(ctx context.Context, token string, itemID int) error {
	sess, err := s.session(ctx, token)
	if err != nil {
		return err
	}

	_, err = s.update(ctx, func(doc *domain.Marketplace) error {
		owner, err := actor(doc, sess)
		if err != nil {
			return err
		}
		item := doc.Item(itemID)
		if item == nil {
			return newError(KindNotFound, "Item not found.")
		}
		if item.SellerID != owner.ID {
			return newError(KindForbidden, "Not your listing.")
		}
		if item.Status == domain.StatusSold {
			return newError(KindConflict, "Sold listings can’t be removed.")
		}
		doc.Items = slices.DeleteFunc(doc.Items, func(it domain.Item) bool { return it.ID == itemID })
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("item_id", itemID).Msg("listing removed")
	s.publish(pubsub.MarketRemove, map[string]any{"itemId": itemID})
	return nil
}

// Export renders the whole document as indented JSON.
func (s *MarketService) Export(ctx context.Context) ([]byte, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return raw, nil
}

type importFile struct {
	Users  *[]domain.User    `json:"users"`
	Items  *[]domain.Item    `json:"items"`
	Orders *[]domain.Order   `json:"orders"`
	Seq    *domain.Sequences `json:"seq"`
}

// Import replaces the whole document. Only the presence of the three collections is checked.
func (s *MarketService) Import(ctx context.Context, raw []byte) (*domain.Marketplace, error) {
	var in importFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, newError(KindValidation, "Could not parse JSON.")
	}
	if in.Users == nil || in.Items == nil || in.Orders == nil {
		return nil, newError(KindValidation, "Invalid import file. Missing users/items/orders.")
	}

	doc := &domain.Marketplace{Users: *in.Users, Items: *in.Items, Orders: *in.Orders, Seq: in.Seq}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, persistenceError(err)
	}

	s.logger.Info().
		Int("users", len(doc.Users)).
		Int("items", len(doc.Items)).
		Int("orders", len(doc.Orders)).
		Msg("marketplace imported")
	s.publish(pubsub.MarketImport, nil)
	return doc, nil
}

func (s *MarketService) publish(kind string, payload map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(pubsub.Event{Type: kind, Payload: payload})
}
