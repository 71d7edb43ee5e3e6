package service

import (
	"crypto/subtle"
	"encoding/hex"
	"hash/fnv"

	"vanta-site/internal/config"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 1
	argonKeyLen  = 32
)

// PasswordHasher produces a deterministic fixed-length digest so stored hashes compare by equality.
type PasswordHasher struct {
	salt []byte
}

func NewPasswordHasher(cfg *config.Config) *PasswordHasher {
	return &PasswordHasher{salt: []byte(cfg.PasswordSalt)}
}

func (h *PasswordHasher) Digest(password string) string {
	key := argon2.IDKey([]byte(password), h.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

func (h *PasswordHasher) Verify(password, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Digest(password)), []byte(digest)) == 1
}

var avatarBank = []string{"🪐", "🧠", "🦾", "🛰️", "🧿", "🦄", "🦊", "🐙", "🧇", "🧢", "🧪", "🧊", "⚡", "🔮", "🗿"}

// pickAvatar maps a display name onto the avatar bank using the top 24 bits of its FNV-1a hash.
func pickAvatar(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return avatarBank[(h.Sum32()>>8)%uint32(len(avatarBank))]
}
