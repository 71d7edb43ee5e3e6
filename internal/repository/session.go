package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vanta-site/internal/blob"
	"vanta-site/internal/constants"
	"vanta-site/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// SessionStore keeps sessions under their own key prefix, apart from any business document.
type SessionStore struct {
	store  blob.Store
	logger zerolog.Logger
}

func NewSessionStore(store blob.Store, logger zerolog.Logger) *SessionStore {
	return &SessionStore{store: store, logger: logger}
}

func sessionKey(token string) string {
	return constants.SessionKeyPrefix + token
}

const (
	tokenAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tokenLen      = 21
	maxTokenLen   = 64
)

// validToken accepts only tokens drawn from tokenAlphabet, so a forged cookie
// can never name a key the backing store would reject.
func validToken(token string) bool {
	if token == "" || len(token) > maxTokenLen {
		return false
	}
	for _, c := range token {
		if !strings.ContainsRune(tokenAlphabet, c) {
			return false
		}
	}
	return true
}

// Get returns nil without error when the token has no session or is not a token at all.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	if !validToken(token) {
		return nil, nil
	}

	raw, err := s.store.Get(ctx, sessionKey(token))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Warn().Err(err).Msg("malformed session, ignoring")
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Put(ctx context.Context, token string, sess domain.Session) error {
	if !validToken(token) {
		return fmt.Errorf("invalid session token %q", token)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.Put(ctx, sessionKey(token), raw); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Create stores a fresh session for userID and returns its token.
func (s *SessionStore) Create(ctx context.Context, userID int, now time.Time) (string, error) {
	token, err := gonanoid.Generate(tokenAlphabet, tokenLen)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	if err := s.Put(ctx, token, domain.Session{UserID: userID, CreatedAt: now}); err != nil {
		return "", err
	}
	return token, nil
}

func (s *SessionStore) Clear(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	if err := s.store.Delete(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
