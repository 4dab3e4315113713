package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alzy/commerce-api/internal/store"
	"github.com/alzy/commerce-api/types"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the access token lifetime.
const DefaultTokenTTL = 60 * time.Minute

// TokenConfig holds the process-wide signing settings. Build it once at
// startup with NewTokenConfig and share it read-only.
type TokenConfig struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// NewTokenConfig validates the signing settings. Only the HMAC family is
// accepted.
func NewTokenConfig(secret, algorithm string, ttl time.Duration) (TokenConfig, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return TokenConfig{}, errors.New("jwt secret is required")
	}
	method, ok := jwt.GetSigningMethod(strings.ToUpper(strings.TrimSpace(algorithm))).(*jwt.SigningMethodHMAC)
	if !ok {
		return TokenConfig{}, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return TokenConfig{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// Algorithm returns the JWS algorithm name, e.g. "HS256".
func (c TokenConfig) Algorithm() string {
	return c.method.Alg()
}

// TTL returns the access token lifetime.
func (c TokenConfig) TTL() time.Duration {
	return c.ttl
}

// Claims is the token payload: {phone, email, exp}.
type Claims struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs access tokens.
type Issuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewIssuer(cfg TokenConfig) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// Issue returns a signed token for user that expires TTL from now (UTC).
func (i *Issuer) Issue(user types.User) (string, error) {
	claims := Claims{
		Phone: user.Phone,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(i.now().UTC().Add(i.cfg.ttl)),
		},
	}
	token := jwt.NewWithClaims(i.cfg.method, claims)
	return token.SignedString(i.cfg.secret)
}

// IdentityLookup re-resolves the user named by a token.
type IdentityLookup interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// Verifier validates access tokens and resolves them to live users.
type Verifier struct {
	cfg   TokenConfig
	users IdentityLookup
	now   func() time.Time
}

func NewVerifier(cfg TokenConfig, users IdentityLookup) *Verifier {
	return &Verifier{cfg: cfg, users: users, now: time.Now}
}

// Verify checks the signature and expiry of tokenString, then loads the user
// named by its email claim. Every rejection wraps ErrInvalidToken; only
// store failures other than a miss are returned as-is.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (types.Identity, error) {
	claims, err := v.parse(tokenString)
	if err != nil {
		return types.Identity{}, err
	}

	user, err := v.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Identity{}, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return types.Identity{}, fmt.Errorf("lookup token owner: %w", err)
	}
	return user.Identity(), nil
}

func (v *Verifier) parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.cfg.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.cfg.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	return claims, nil
}
