package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues and validates signed session tokens. Guest sessions get
// a synthetic prefixed id; authenticated tokens carry the numeric account
// id as subject and are normally minted by the auth collaborator with the
// same shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

type claims struct {
	jwt.RegisteredClaims
}

// IssueGuest mints a fresh guest session token and returns it together
// with the generated guest id.
func (s *Service) IssueGuest() (token, guestID string, err error) {
	guestID = GuestPrefix + uuid.NewString()
	token, err = s.sign(guestID)
	return token, guestID, err
}

// IssueUser mints a token for a numeric account id.
func (s *Service) IssueUser(userID int64) (string, error) {
	return s.sign(strconv.FormatInt(userID, 10))
}

// Validate parses a session token and returns the Session it represents.
func (s *Service) Validate(token string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{ID: c.Subject}, nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

func (s *Service) sign(subject string) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}
