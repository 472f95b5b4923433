package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	userID := uuid.New()

	token, exp, err := m.GenerateAccess(userID, valueobject.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	gotID, role, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "admin", role)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	other := NewTokenManager("another-secret-another-secret-xx", time.Hour)

	foreign, _, err := other.GenerateAccess(uuid.New(), valueobject.RoleAdmin)
	require.NoError(t, err)
	_, _, err = m.ParseAccess(foreign)
	assert.Error(t, err)

	_, _, err = m.ParseAccess("not-a-token")
	assert.Error(t, err)

	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := m.GenerateAccess(uuid.New(), valueobject.RoleBreeder)
	require.NoError(t, err)
	m.now = time.Now
	_, _, err = m.ParseAccess(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, _, err = m.GenerateAccess(uuid.Nil, valueobject.RoleAdmin)
	assert.Error(t, err)
}

func TestTokenManager_RejectsUnsignedAlgorithm(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = m.ParseAccess(unsigned)
	assert.Error(t, err)
}
