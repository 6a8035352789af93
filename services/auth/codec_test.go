package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodecConfig() CodecConfig {
	return CodecConfig{
		AccessSecret:  []byte("access-secret-for-tests-0123456789"),
		RefreshSecret: []byte("refresh-secret-for-tests-0123456789"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "webshop-test",
	}
}

func newTestCodec(t *testing.T, opts ...CodecOption) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testCodecConfig(), opts...)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_RequiresSecrets(t *testing.T) {
	cfg := testCodecConfig()
	cfg.RefreshSecret = nil

	codec, err := NewTokenCodec(cfg)
	assert.Error(t, err)
	assert.Nil(t, codec)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name  string
		kind  TokenKind
		roles []string
	}{
		{"access with roles", KindAccess, []string{"USER", "ADMIN"}},
		{"refresh with one role", KindRefresh, []string{"USER"}},
		{"access without roles", KindAccess, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Mint(tt.kind, "a@x.com", tt.roles, time.Hour)
			require.NoError(t, err)

			claims, err := codec.ParseAndVerify(tt.kind, token)
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", claims.Subject)
			assert.Equal(t, tt.roles, claims.Roles)
			assert.Equal(t, tt.kind, claims.Kind)
			assert.NotEmpty(t, claims.ID)
			assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
		})
	}
}

func TestTokenCodec_MintHelpersUseConfiguredTTL(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, WithClock(func() time.Time { return now }))

	access, err := codec.MintAccess("a@x.com", []string{"USER"})
	require.NoError(t, err)
	refresh, err := codec.MintRefresh("a@x.com", []string{"USER"})
	require.NoError(t, err)

	accessClaims, err := codec.ParseAndVerify(KindAccess, access)
	require.NoError(t, err)
	refreshClaims, err := codec.ParseAndVerify(KindRefresh, refresh)
	require.NoError(t, err)

	assert.True(t, now.Add(15*time.Minute).Equal(accessClaims.ExpiresAt))
	assert.True(t, now.Add(24*time.Hour).Equal(refreshClaims.ExpiresAt))
	assert.Equal(t, 15*time.Minute, codec.TTL(KindAccess))
}

func TestTokenCodec_Expiry(t *testing.T) {
	t.Run("zero ttl is expired immediately", func(t *testing.T) {
		codec := newTestCodec(t)

		token, err := codec.Mint(KindAccess, "a@x.com", nil, 0)
		require.NoError(t, err)

		_, err = codec.ParseAndVerify(KindAccess, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("verified after the window has passed", func(t *testing.T) {
		now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
		codec := newTestCodec(t, WithClock(func() time.Time { return now }))

		token, err := codec.Mint(KindRefresh, "a@x.com", nil, time.Minute)
		require.NoError(t, err)

		now = now.Add(59 * time.Second)
		_, err = codec.ParseAndVerify(KindRefresh, token)
		require.NoError(t, err)

		now = now.Add(2 * time.Second)
		_, err = codec.ParseAndVerify(KindRefresh, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestTokenCodec_KindIsolation(t *testing.T) {
	codec := newTestCodec(t)

	access, err := codec.MintAccess("a@x.com", []string{"USER"})
	require.NoError(t, err)
	refresh, err := codec.MintRefresh("a@x.com", []string{"USER"})
	require.NoError(t, err)

	_, err = codec.ParseAndVerify(KindRefresh, access)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = codec.ParseAndVerify(KindAccess, refresh)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenCodec_KindClaimCheckedWithSharedSecret(t *testing.T) {
	cfg := testCodecConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	codec, err := NewTokenCodec(cfg)
	require.NoError(t, err)

	access, err := codec.MintAccess("a@x.com", nil)
	require.NoError(t, err)

	_, err = codec.ParseAndVerify(KindRefresh, access)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenCodec_ForeignSecret(t *testing.T) {
	codec := newTestCodec(t)

	other := testCodecConfig()
	other.AccessSecret = []byte("someone-elses-access-secret-0123456789")
	foreign, err := NewTokenCodec(other)
	require.NoError(t, err)

	token, err := foreign.MintAccess("a@x.com", nil)
	require.NoError(t, err)

	_, err = codec.ParseAndVerify(KindAccess, token)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "abc.def"},
		{"bad base64", "@@@.###.$$$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.ParseAndVerify(KindAccess, tt.token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	codec := newTestCodec(t)
	cfg := testCodecConfig()

	claims := envelope{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Kind: KindAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(cfg.AccessSecret)
	require.NoError(t, err)

	_, err = codec.ParseAndVerify(KindAccess, token)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestTokenCodec_MissingSubject(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Mint(KindAccess, "", nil, time.Hour)
	require.NoError(t, err)

	_, err = codec.ParseAndVerify(KindAccess, token)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestTokenCodec_DistinctTokensWithinSameSecond(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, WithClock(func() time.Time { return now }))

	first, err := codec.MintRefresh("a@x.com", []string{"USER"})
	require.NoError(t, err)
	second, err := codec.MintRefresh("a@x.com", []string{"USER"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 3, len(strings.Split(first, ".")))
}
