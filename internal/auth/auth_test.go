package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agua24-backend/config"
	"agua24-backend/internal/model"
)

func testManager(ttl time.Duration) *Manager {
	return NewManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl})
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := testManager(time.Hour)
	u := &model.User{
		ID:                uuid.New(),
		Name:              "Marta",
		Role:              model.RoleCondoAdmin,
		AssignedMachineID: "QR-001",
		Phone:             "5215512345678",
	}

	token, err := mgr.GenerateToken(u)
	require.NoError(t, err)

	sess, err := mgr.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, "Marta", sess.Name)
	assert.Equal(t, model.RoleCondoAdmin, sess.Role)
	assert.Equal(t, "QR-001", sess.MachineID)
	assert.Equal(t, "5215512345678", sess.Phone)
	assert.True(t, sess.IsCondoAdmin())
	assert.False(t, sess.IsOwner())
}

func TestParseTokenFailures(t *testing.T) {
	mgr := testManager(time.Hour)
	u := &model.User{ID: uuid.New(), Name: "Luis", Role: model.RoleTechnician}

	t.Run("garbage token", func(t *testing.T) {
		_, err := mgr.ParseToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := mgr.GenerateToken(u)
		require.NoError(t, err)
		other := NewManager(&config.AuthConfig{JWTSecret: "another-secret", TokenTTL: time.Hour})
		_, err = other.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := testManager(-time.Minute)
		token, err := expired.GenerateToken(u)
		require.NoError(t, err)
		_, err = expired.ParseToken(token)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}
