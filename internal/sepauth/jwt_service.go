package sepauth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = fmt.Errorf("invalid token")

// Audience identifies which surface a token is minted for. Each audience has
// its own secret; the audience is the single dispatch key.
type Audience string

const (
	AudienceSep10            Audience = "sep10"
	AudienceSep24Interactive Audience = "sep24-interactive"
	AudienceSep24MoreInfo    Audience = "sep24-more-info"
	AudienceCallback         Audience = "callback"
	AudiencePlatform         Audience = "platform"
	AudienceCustody          Audience = "custody"
)

func (a Audience) Validate() error {
	switch a {
	case AudienceSep10, AudienceSep24Interactive, AudienceSep24MoreInfo,
		AudienceCallback, AudiencePlatform, AudienceCustody:
		return nil
	default:
		return fmt.Errorf("invalid JWT audience %q", a)
	}
}

// JWTService signs and verifies HS256 tokens with one secret per audience.
// Secrets are base64-encoded before being used as signing keys, and secrets
// are immutable after construction.
type JWTService struct {
	secrets map[Audience][]byte
}

// NewJWTService builds the typed secret registry. Audiences with an empty
// secret are left out; encoding or decoding for them fails.
func NewJWTService(secrets map[Audience]string) (*JWTService, error) {
	registry := make(map[Audience][]byte, len(secrets))
	for audience, secret := range secrets {
		if err := audience.Validate(); err != nil {
			return nil, err
		}
		if secret == "" {
			continue
		}
		registry[audience] = []byte(base64.StdEncoding.EncodeToString([]byte(secret)))
	}
	return &JWTService{secrets: registry}, nil
}

func (s *JWTService) secretFor(audience Audience) ([]byte, error) {
	secret, ok := s.secrets[audience]
	if !ok {
		return nil, fmt.Errorf("no secret configured for audience %q", audience)
	}
	return secret, nil
}

// Encode signs the claims with the audience's secret using HS256.
func (s *JWTService) Encode(audience Audience, claims jwt.Claims) (string, error) {
	secret, err := s.secretFor(audience)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token for audience %q: %w", audience, err)
	}
	return signedToken, nil
}

// Decode parses and verifies the token against the audience's secret,
// populating the given claims. Tokens signed with any algorithm other than
// HS256 are rejected.
func (s *JWTService) Decode(audience Audience, tokenString string, claims jwt.Claims) error {
	secret, err := s.secretFor(audience)
	if err != nil {
		return err
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("parsing token for audience %q: %w", audience, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// GeneratePlatformToken mints a short-lived token for the platform audience,
// used by custody services and anchor backends calling the dispatcher.
func (s *JWTService) GeneratePlatformToken(subject string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
	}
	return s.Encode(AudiencePlatform, claims)
}

// ParsePlatformToken verifies a platform-audience token and returns its claims.
func (s *JWTService) ParsePlatformToken(tokenString string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	if err := s.Decode(AudiencePlatform, tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}
