package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/codetutor/internal/db"
	"github.com/codetutor/internal/domain"
)

// Use discriminates access tokens from refresh tokens. A token of one use is
// never accepted where the other is expected.
type Use string

const (
	UseAccess  Use = "access"
	UseRefresh Use = "refresh"
)

// Leeway tolerated when validating exp/iat, to absorb small clock skew
const clockSkewLeeway = 30 * time.Second

// Claims is the claim set carried by both token types. Access tokens embed
// username/email/role so authorization travels with the token; role changes
// therefore only take effect on the next issuance.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	TokenUse string `json:"token_use"`
	// AccessID links a refresh token back to the access token it was issued with
	AccessID string `json:"access_jti,omitempty"`
	jwt.RegisteredClaims
}

// Pair is an issued access/refresh token pair
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds until the access token expires
}

// Service issues, verifies, refreshes, and revokes signed tokens.
//
// Revocation is tracked by jti in an injectable RevocationStore. The default
// in-memory store is process-local: it does not survive restarts and does not
// scale across instances without an external store.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	revoked       RevocationStore
}

// Options configures a token Service
type Options struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Revocations   RevocationStore // defaults to an in-memory store
}

// NewService creates a token Service
func NewService(opts Options) (*Service, error) {
	if opts.AccessSecret == "" || opts.RefreshSecret == "" {
		return nil, errors.New("token service requires both signing secrets")
	}
	if opts.AccessSecret == opts.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if opts.AccessTTL == 0 {
		opts.AccessTTL = time.Hour
	}
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	if opts.Revocations == nil {
		opts.Revocations = NewMemoryRevocationStore()
	}
	return &Service{
		accessSecret:  []byte(opts.AccessSecret),
		refreshSecret: []byte(opts.RefreshSecret),
		issuer:        opts.Issuer,
		audience:      opts.Audience,
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		revoked:       opts.Revocations,
	}, nil
}

// IssuePair mints an access/refresh token pair for a user. The refresh token
// records the access token's jti it was paired with.
func (s *Service) IssuePair(user *db.User) (*Pair, error) {
	now := time.Now()

	accessID := uuid.New().String()
	accessClaims := Claims{
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		TokenUse: string(UseAccess),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        accessID,
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.accessSecret)
	if err != nil {
		return nil, err
	}

	refreshClaims := Claims{
		TokenUse: string(UseRefresh),
		AccessID: accessID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Verify checks signature, expiry, issuer/audience, token use, and revocation.
// Error taxonomy: domain.ErrTokenExpired, ErrTokenMalformed (covers signature
// and claim failures), ErrTokenWrongType, ErrTokenRevoked.
func (s *Service) Verify(tokenStr string, expected Use) (*Claims, error) {
	claims, err := s.parse(tokenStr, true)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != string(expected) {
		return nil, domain.ErrTokenWrongType
	}
	if s.revoked.IsRevoked(claims.ID) {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

// UserLookup resolves a user id to a fresh user record during refresh
type UserLookup func(userID string) (*db.User, error)

// Refresh verifies a refresh token and mints a new access token for the same
// subject, re-reading the user so role and active-flag changes are picked up.
// The refresh token itself is not rotated; see the design notes.
func (s *Service) Refresh(refreshToken string, lookup UserLookup) (string, int64, error) {
	claims, err := s.Verify(refreshToken, UseRefresh)
	if err != nil {
		return "", 0, err
	}

	user, err := lookup(claims.Subject)
	if err != nil {
		return "", 0, err
	}
	if !user.Active {
		return "", 0, domain.ErrAccountDisabled
	}

	now := time.Now()
	accessClaims := Claims{
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		TokenUse: string(UseAccess),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.accessSecret)
	if err != nil {
		return "", 0, err
	}
	return accessToken, int64(s.accessTTL.Seconds()), nil
}

// Revoke adds the token's jti to the revocation set. The signature must still
// verify, but an already-expired token is accepted so logout never fails on
// stale credentials. Idempotent.
func (s *Service) Revoke(tokenStr string, use Use) error {
	claims, err := s.parse(tokenStr, false)
	if err != nil {
		return err
	}
	if claims.TokenUse != string(use) {
		return domain.ErrTokenWrongType
	}

	expiry := time.Now().Add(s.refreshTTL)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	s.revoked.Revoke(claims.ID, expiry)
	return nil
}

// parse verifies the signature (selecting the secret by the token's declared
// use) and, when validateClaims is set, the registered claims. Only HS256 is
// accepted; alg=none and asymmetric methods are rejected outright.
func (s *Service) parse(tokenStr string, validateClaims bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithIssuedAt(),
	}
	if !validateClaims {
		opts = []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		}
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// The use claim is unverified at this point; it only selects which of
		// our two trusted secrets must validate the signature.
		if c, ok := t.Claims.(*Claims); ok && c.TokenUse == string(UseRefresh) {
			return s.refreshSecret, nil
		}
		return s.accessSecret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired.WithCause(err)
		}
		return nil, domain.ErrTokenMalformed.WithCause(err)
	}
	return claims, nil
}
