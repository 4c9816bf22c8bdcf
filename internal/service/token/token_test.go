package service_token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TokenServiceSuite struct {
	suite.Suite
}

func (s *TokenServiceSuite) TestRoundTrip(t provider.T) {
	t.Parallel()
	svc := New("secret", time.Hour)

	token, err := svc.Issue("ABC123", "participant-1")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", claims.RoomCode)
	assert.Equal(t, "participant-1", claims.ParticipantID)
	assert.Equal(t, "participant-1", claims.Subject)
}

func (s *TokenServiceSuite) TestEmptySecretIsRandom(t provider.T) {
	t.Parallel()
	svc := New("", time.Hour)

	token, err := svc.Issue("ABC123", "participant-1")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	require.NoError(t, err)

	_, err = New("", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RoomCode:      "ABC123",
		ParticipantID: "participant-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("shared"))
	require.NoError(t, err)

	_, err = svc.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func (s *TokenServiceSuite) TestParseRejects(t provider.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		token func(t provider.T) string
		now   time.Time
	}{
		{
			name: "Should reject garbage",
			token: func(t provider.T) string {
				return "not-a-token"
			},
			now: issued,
		},
		{
			name: "Should reject token signed with another secret",
			token: func(t provider.T) string {
				other := New("other", time.Hour)
				other.now = func() time.Time { return issued }
				tok, err := other.Issue("ABC123", "p")
				require.NoError(t, err)
				return tok
			},
			now: issued,
		},
		{
			name: "Should reject expired token",
			token: func(t provider.T) string {
				svc := New("secret", time.Hour)
				svc.now = func() time.Time { return issued }
				tok, err := svc.Issue("ABC123", "p")
				require.NoError(t, err)
				return tok
			},
			now: issued.Add(2 * time.Hour),
		},
		{
			name: "Should reject foreign signing method",
			token: func(t provider.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
					RoomCode:      "ABC123",
					ParticipantID: "p",
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    issuer,
						ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
					},
				}).SignedString([]byte("secret"))
				require.NoError(t, err)
				return tok
			},
			now: issued,
		},
		{
			name: "Should reject token without participant",
			token: func(t provider.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
					RoomCode: "ABC123",
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    issuer,
						ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
					},
				}).SignedString([]byte("secret"))
				require.NoError(t, err)
				return tok
			},
			now: issued,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			svc := New("secret", time.Hour)
			svc.now = func() time.Time { return tc.now }

			_, err := svc.Parse(tc.token(t))

			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenServiceSuite(t *testing.T) {
	suite.RunSuite(t, new(TokenServiceSuite))
}
