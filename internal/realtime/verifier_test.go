package realtime

import (
	"context"
	"testing"

	"shop-realtime-api/internal/auth"
	"shop-realtime-api/internal/models"
	"shop-realtime-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, id, username string) string {
	t.Helper()
	token, err := auth.GenerateToken(id, username)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		ID:           id,
		Username:     username,
		Password:     "x",
		CurrentToken: token,
	}).Error)
	return token
}

func TestTokenVerifier_AcceptsCurrentToken(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	token := seedUser(t, db, "u-1", "alice")

	v := NewTokenVerifier(db)
	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, Identity{UserID: "u-1", Username: "alice"}, identity)
}

func TestTokenVerifier_RejectsGarbage(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	v := NewTokenVerifier(db)
	_, err = v.Verify(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenVerifier_RejectsUnknownUser(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	// Valid signature, but no matching user row.
	token, err := auth.GenerateToken("u-ghost", "ghost")
	require.NoError(t, err)

	v := NewTokenVerifier(db)
	_, err = v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenVerifier_RejectsSupersededToken(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	oldToken := seedUser(t, db, "u-1", "alice")

	// A later login replaces the current token; the old one must stop working.
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", "u-1").
		Update("current_token", "different-token").Error)

	v := NewTokenVerifier(db)
	_, err = v.Verify(context.Background(), oldToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenVerifier_CachesVerifiedCredential(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	token := seedUser(t, db, "u-1", "alice")

	v := NewTokenVerifier(db)
	_, err = v.Verify(context.Background(), token)
	require.NoError(t, err)

	// Within the cache TTL a revoked token still verifies without a DB hit;
	// that window is the price of sparing the DB on reconnect storms.
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", "u-1").
		Update("current_token", "rotated").Error)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "u-1", identity.UserID)
}
