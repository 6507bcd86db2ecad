package azuread

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"contact-tracker/internal/config"
	"contact-tracker/internal/domain/user"
)

var (
	ErrNotConfigured = errors.New("azure ad is not configured")
	ErrInvalidToken  = errors.New("invalid azure ad token")
	ErrUnknownKey    = errors.New("signing key not found")
)

// JSONCache is the subset of the shared cache used to persist the key set.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

type claims struct {
	OID               string `json:"oid"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	UPN               string `json:"upn"`

	jwtlib.RegisteredClaims
}

// Verifier validates RS256 access tokens issued by one Azure AD tenant.
type Verifier struct {
	tenantID string
	clientID string
	jwksURL  string
	ttl      time.Duration

	http   *resty.Client
	cache  JSONCache
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewVerifier(cfg config.AzureConfig, cache JSONCache, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.JWKSTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Verifier{
		tenantID: cfg.TenantID,
		clientID: cfg.ClientID,
		jwksURL:  cfg.JWKSURL,
		ttl:      ttl,
		http: resty.New().
			SetTimeout(5 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(200 * time.Millisecond).
			SetHeader("Accept", "application/json"),
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

func (v *Verifier) Enabled() bool {
	return v != nil && v.tenantID != "" && v.jwksURL != ""
}

// IssuedByAzure peeks at the unverified issuer to route a token to this verifier.
func IssuedByAzure(token string) bool {
	var c jwtlib.RegisteredClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, &c); err != nil {
		return false
	}
	return strings.Contains(c.Issuer, "login.microsoftonline.com") || strings.Contains(c.Issuer, "sts.windows.net")
}

func (v *Verifier) issuers() []string {
	return []string{
		fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", v.tenantID),
		fmt.Sprintf("https://sts.windows.net/%s/", v.tenantID),
	}
}

// Verify checks signature, expiry, issuer and, when a client id is configured,
// audience. Azure users always get the user role.
func (v *Verifier) Verify(ctx context.Context, token string) (user.Principal, error) {
	if !v.Enabled() {
		return user.Principal{}, ErrNotConfigured
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodRS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(v.now),
	}
	if v.clientID != "" {
		opts = append(opts, jwtlib.WithAudience(v.clientID))
	}

	var c claims
	tok, err := jwtlib.NewParser(opts...).ParseWithClaims(token, &c, func(t *jwtlib.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.key(ctx, kid)
	})
	if err != nil || tok == nil || !tok.Valid {
		return user.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	validIssuer := false
	for _, iss := range v.issuers() {
		if c.Issuer == iss {
			validIssuer = true
			break
		}
	}
	if !validIssuer {
		return user.Principal{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, c.Issuer)
	}

	id := firstNonEmpty(c.OID, c.Subject)
	if id == "" {
		return user.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return user.Principal{
		UserID:   id,
		Name:     c.Name,
		Email:    firstNonEmpty(c.PreferredUsername, c.Email, c.UPN),
		Role:     user.RoleUser,
		Provider: user.ProviderAzure,
	}, nil
}

func (v *Verifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, ErrUnknownKey
	}

	v.mu.RLock()
	k, ok := v.keys[kid]
	fresh := v.now().Sub(v.fetchedAt) < v.ttl
	v.mu.RUnlock()
	if ok && fresh {
		return k, nil
	}

	// Keys rotate; an unknown kid forces a refetch even within the TTL.
	if err := v.refresh(ctx, !ok); err != nil {
		if ok {
			v.logger.Warn("azure jwks refresh failed, using stale key", zap.Error(err))
			return k, nil
		}
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if k, ok := v.keys[kid]; ok {
		return k, nil
	}
	return nil, ErrUnknownKey
}

func (v *Verifier) refresh(ctx context.Context, bypassCache bool) error {
	var set jwks
	cached := false
	if v.cache != nil && !bypassCache {
		if ok, err := v.cache.GetJSON(ctx, cacheKey(v.tenantID), &set); err == nil && ok {
			cached = true
		}
	}

	if !cached {
		resp, err := v.http.R().SetContext(ctx).SetResult(&set).Get(v.jwksURL)
		if err != nil {
			return fmt.Errorf("fetch jwks: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("fetch jwks: status %d", resp.StatusCode())
		}
		if v.cache != nil {
			if err := v.cache.SetJSON(ctx, cacheKey(v.tenantID), set, v.ttl); err != nil {
				v.logger.Debug("cache jwks failed", zap.Error(err))
			}
		}
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaKey(k)
		if err != nil {
			v.logger.Warn("skipping malformed jwk", zap.String("kid", k.Kid), zap.Error(err))
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks contains no usable RSA keys")
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = v.now()
	v.mu.Unlock()
	return nil
}

func rsaKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	e := new(big.Int).SetBytes(eb)
	if !e.IsInt64() || e.Int64() <= 1 || e.Int64() > 1<<31-1 {
		return nil, errors.New("exponent out of range")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}, nil
}

func cacheKey(tenant string) string {
	return "azuread:jwks:" + tenant
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
