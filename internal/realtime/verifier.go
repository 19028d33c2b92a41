package realtime

import (
	"context"
	"errors"
	"time"

	"shop-realtime-api/internal/auth"
	"shop-realtime-api/internal/cache"
	"shop-realtime-api/internal/models"

	"gorm.io/gorm"
)

// Identity is the stable result of a successful handshake verification.
type Identity struct {
	UserID   string
	Username string
}

// ErrUnauthorized is returned for every rejected credential. The realtime
// layer never inspects why verification failed.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier validates a handshake credential and returns a stable identity.
// Verify is called once per incoming connection, before any registry
// interaction, and must be safe to call concurrently.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// identityCacheTTL bounds how long a revoked token can keep passing the
// handshake without a database round-trip.
const identityCacheTTL = 30 * time.Second

// TokenVerifier is the production Verifier: the credential is a JWT, and it
// is only accepted while it is the account's current token, so a new login
// cuts off handshakes with any older token. Verified credentials are cached
// briefly to spare the database on reconnect storms.
type TokenVerifier struct {
	db    *gorm.DB
	cache cache.Cache[string, Identity]
}

// NewTokenVerifier builds a TokenVerifier on top of the given database.
func NewTokenVerifier(db *gorm.DB) *TokenVerifier {
	return &TokenVerifier{
		db:    db,
		cache: cache.NewTTLCache[string, Identity](),
	}
}

// Verify implements Verifier.
func (v *TokenVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	if identity, ok := v.cache.Get(credential); ok {
		return identity, nil
	}

	claims, err := auth.ValidateToken(credential)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	var user models.User
	err = v.db.WithContext(ctx).
		Select("id", "username", "current_token").
		Where("id = ?", claims.UserID).
		First(&user).Error
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	if user.CurrentToken != credential {
		return Identity{}, ErrUnauthorized
	}

	identity := Identity{UserID: user.ID, Username: user.Username}
	v.cache.Set(credential, identity, identityCacheTTL)
	return identity, nil
}
