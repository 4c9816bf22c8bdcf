package service_token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInternal     = errors.New("internal error")
	ErrInvalidToken = errors.New("invalid participant token")
)

const issuer = "moviematch"

// Claims bind a participant id to the room it was issued for.
type Claims struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New signs with secret. An empty secret is replaced by a random one, so tokens
// are only valid for the lifetime of the process.
func New(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour /* room retention */
	}
	if secret == "" {
		secret = rand.Text()
	}

	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Service) Issue(roomCode, participantID string) (string, error) {
	now := s.now()
	claims := Claims{
		RoomCode:      roomCode,
		ParticipantID: participantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   participantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Join(ErrInternal, err)
	}
	return signed, nil
}

func (s *Service) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.RoomCode == "" || claims.ParticipantID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
