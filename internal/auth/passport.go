package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brawlers/missionboard/internal/model"
)

const issuer = "missionboard"

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"display_name,omitempty"`
}

// Passport is what a brawler gets on login or registration.
type Passport struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	BrawlerID   uint      `json:"brawler_id"`
	DisplayName string    `json:"display_name"`
}

// Passports issues and verifies HS256 signed tokens whose subject is the
// brawler id.
type Passports struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewPassports(secret string, ttl time.Duration) *Passports {
	return &Passports{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (p *Passports) Issue(b *model.Brawler) (*Passport, error) {
	if b == nil || b.ID == 0 {
		return nil, fmt.Errorf("no brawler to issue passport for")
	}

	now := p.now()
	exp := now.Add(p.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(b.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		DisplayName: b.DisplayName,
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Passport{
		Token:       signed,
		ExpiresAt:   exp.UTC(),
		BrawlerID:   b.ID,
		DisplayName: b.DisplayName,
	}, nil
}

// Verify returns the brawler id carried by a valid token.
func (p *Passports) Verify(token string) (uint, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenInvalidClaims)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}

	return uint(id), nil
}
