package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/server/middleware"
)

const (
	tokenIssuer   = "talent-matcher"
	tokenAudience = "operator"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("operator token expired")
	// ErrTokenInvalid is returned for every other rejected token.
	ErrTokenInvalid = errors.New("invalid operator token")
)

// OperatorClaims are the claims of an operator token. The operator is the subject.
type OperatorClaims struct {
	jwt.RegisteredClaims
}

// GetOperator implements middleware.SubjectGetter.
func (c *OperatorClaims) GetOperator() string {
	return c.Subject
}

// OperatorTokens issues and verifies the HS256 bearer tokens that guard
// operator endpoints.
type OperatorTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewOperatorTokens creates an OperatorTokens from cfg.
func NewOperatorTokens(cfg *config.JWTConfig) *OperatorTokens {
	return &OperatorTokens{
		secret: []byte(cfg.Secret),
		ttl:    time.Duration(cfg.ExpirationHours) * time.Hour,
		now:    time.Now,
	}
}

// Issue signs a token for operator and returns it with its expiry.
func (t *OperatorTokens) Issue(operator string) (string, time.Time, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return "", time.Time{}, errors.New("operator is empty")
	}

	now := t.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(t.ttl)
	claims := &OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   operator,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign operator token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and registered claims of token and returns its
// claims. Failures wrap ErrTokenExpired or ErrTokenInvalid.
func (t *OperatorTokens) Verify(token string) (*OperatorClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrTokenInvalid)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	claims := &OperatorClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: no operator subject", ErrTokenInvalid)
	}
	return claims, nil
}

// Validator adapts t to the auth middleware.
func (t *OperatorTokens) Validator() middleware.TokenValidator {
	return middleware.TokenValidatorFunc(func(token string) (middleware.SubjectGetter, error) {
		claims, err := t.Verify(token)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}
