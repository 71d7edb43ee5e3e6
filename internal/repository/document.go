package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"vanta-site/internal/blob"

	"github.com/rs/zerolog"
)

type DocumentConfig[T any] struct {
	Key  string
	Seed func() T

	// Valid rejects payloads that decode but lack required structure; they are treated as absent.
	Valid func(*T) error

	// Indent writes two-space indented JSON.
	Indent bool
}

// DocumentStore owns one JSON document persisted as a single blob.
// Every write replaces the whole document.
type DocumentStore[T any] struct {
	store  blob.Store
	cfg    DocumentConfig[T]
	mu     sync.Mutex
	logger zerolog.Logger
}

func NewDocumentStore[T any](store blob.Store, cfg DocumentConfig[T], logger zerolog.Logger) *DocumentStore[T] {
	return &DocumentStore[T]{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("document", cfg.Key).Logger(),
	}
}

// Load returns the persisted document. Absent and malformed payloads both report false.
func (s *DocumentStore[T]) Load(ctx context.Context) (*T, bool, error) {
	doc, _, ok, err := s.load(ctx)
	return doc, ok, err
}

func (s *DocumentStore[T]) load(ctx context.Context) (*T, []byte, bool, error) {
	raw, err := s.store.Get(ctx, s.cfg.Key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to load %s: %w", s.cfg.Key, err)
	}

	doc := new(T)
	if err := json.Unmarshal(raw, doc); err != nil {
		s.logger.Warn().Err(err).Msg("persisted document is malformed, treating as absent")
		return nil, nil, false, nil
	}
	if s.cfg.Valid != nil {
		if err := s.cfg.Valid(doc); err != nil {
			s.logger.Warn().Err(err).Msg("persisted document is incomplete, treating as absent")
			return nil, nil, false, nil
		}
	}
	return doc, raw, true, nil
}

func (s *DocumentStore[T]) Save(ctx context.Context, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.save(ctx, doc)
	return err
}

func (s *DocumentStore[T]) save(ctx context.Context, doc *T) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if s.cfg.Indent {
		raw, err = json.MarshalIndent(doc, "", "  ")
	} else {
		raw, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", s.cfg.Key, err)
	}

	if err := s.store.Put(ctx, s.cfg.Key, raw); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", s.cfg.Key, err)
	}
	return raw, nil
}

// LoadOrSeed returns the persisted document, writing the seed first when none exists.
func (s *DocumentStore[T]) LoadOrSeed(ctx context.Context) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.loadOrSeed(ctx)
	return doc, err
}

func (s *DocumentStore[T]) loadOrSeed(ctx context.Context) (*T, []byte, error) {
	doc, raw, ok, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return doc, raw, nil
	}

	seed := s.cfg.Seed()
	raw, err = s.save(ctx, &seed)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Msg("seeded document")
	return &seed, raw, nil
}

// Raw returns the persisted bytes verbatim, seeding first if needed.
func (s *DocumentStore[T]) Raw(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, raw, err := s.loadOrSeed(ctx)
	return raw, err
}

// Update runs a read-modify-write cycle. Nothing is persisted when fn fails,
// and the edited copy is dropped when the write fails.
func (s *DocumentStore[T]) Update(ctx context.Context, fn func(*T) error) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.loadOrSeed(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	if _, err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
