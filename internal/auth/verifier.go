package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifierConfig selects the token algorithm and its key material. RS256
// takes a static PEM public key, a JWKS endpoint, or both; HS256 takes a
// shared secret and exists for dev setups and tests.
type VerifierConfig struct {
	Algorithm string // "RS256" or "HS256"

	PublicKeyPEM string
	JWKSURL      string
	SecretKey    string

	JWKSRefreshInterval time.Duration
	JWKSCacheTimeout    time.Duration
}

// JWK is the wire shape of one JSON Web Key.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet is the wire shape of a JWKS document.
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// cachedKey is one JWKS entry plus the time it was fetched.
type cachedKey struct {
	key     *rsa.PublicKey
	fetched time.Time
}

// Verifier checks bearer tokens for the control API.
type Verifier struct {
	config    VerifierConfig
	staticKey *rsa.PublicKey

	mu        sync.RWMutex
	keys      map[string]cachedKey
	lastFetch time.Time

	httpClient *http.Client
}

// NewVerifier builds a Verifier, failing fast when the configured
// algorithm's key material is absent or unusable. With a JWKS URL the
// initial fetch happens here, so a misconfigured endpoint surfaces at
// startup rather than on the first request.
func NewVerifier(config VerifierConfig) (*Verifier, error) {
	v := &Verifier{
		config:     config,
		keys:       map[string]cachedKey{},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	switch config.Algorithm {
	case "RS256":
		if config.PublicKeyPEM == "" && config.JWKSURL == "" {
			return nil, fmt.Errorf("RS256 requires a public key or a JWKS URL")
		}
		if config.PublicKeyPEM != "" {
			key, err := parsePublicKeyPEM(config.PublicKeyPEM)
			if err != nil {
				return nil, fmt.Errorf("load public key: %w", err)
			}
			v.staticKey = key
		}
		if config.JWKSURL != "" {
			if v.config.JWKSRefreshInterval <= 0 {
				v.config.JWKSRefreshInterval = 5 * time.Minute
			}
			if v.config.JWKSCacheTimeout <= 0 {
				v.config.JWKSCacheTimeout = time.Hour
			}
			if err := v.refreshKeys(); err != nil {
				return nil, fmt.Errorf("initial JWKS fetch: %w", err)
			}
		}
	case "HS256":
		if config.SecretKey == "" {
			return nil, fmt.Errorf("HS256 requires a secret key")
		}
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", config.Algorithm)
	}

	return v, nil
}

// VerifyToken parses and validates a bearer token, returning the claims
// the middleware authorizes on.
func (v *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("empty token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, v.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	mc, ok := token.Claims.(*jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claimsFromMap(*mc)
}

// keyFunc hands the signing key to the JWT parser. The token's algorithm
// must match the configured one, so an HS256 token can never be checked
// against an RSA key or the other way around.
func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != v.config.Algorithm {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	if v.config.Algorithm == "HS256" {
		return []byte(v.config.SecretKey), nil
	}
	if kid, ok := token.Header["kid"].(string); ok && kid != "" {
		return v.keyForKid(kid)
	}
	if v.staticKey == nil {
		return nil, fmt.Errorf("token has no kid and no static key is configured")
	}
	return v.staticKey, nil
}

// Role and scope vocabularies a token may carry. A token with any value
// outside these sets is rejected outright rather than partially honored.
var (
	validRoles  = map[string]bool{RoleViewer: true, RoleController: true}
	validScopes = map[string]bool{ScopeRead: true, ScopeControl: true, ScopeTelemetry: true}
)

// claimsFromMap pulls sub/roles/scopes out of the raw claims and rejects
// values outside the control surface's authorization model.
func claimsFromMap(mc jwt.MapClaims) (*Claims, error) {
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing sub claim")
	}

	roles, err := stringSliceClaim(mc, "roles")
	if err != nil {
		return nil, err
	}
	scopes, err := stringSliceClaim(mc, "scopes")
	if err != nil {
		return nil, err
	}

	if !allKnown(roles, validRoles) {
		return nil, fmt.Errorf("unknown role in %v", roles)
	}
	if !allKnown(scopes, validScopes) {
		return nil, fmt.Errorf("unknown scope in %v", scopes)
	}

	return &Claims{Subject: sub, Roles: roles, Scopes: scopes}, nil
}

// allKnown reports whether vals is non-empty and every element is in
// allowed.
func allKnown(vals []string, allowed map[string]bool) bool {
	if len(vals) == 0 {
		return false
	}
	for _, val := range vals {
		if !allowed[val] {
			return false
		}
	}
	return true
}

func stringSliceClaim(mc jwt.MapClaims, key string) ([]string, error) {
	raw, ok := mc[key]
	if !ok {
		return nil, fmt.Errorf("missing %s claim", key)
	}
	switch vals := raw.(type) {
	case []string:
		return vals, nil
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s claim holds a non-string element", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s claim is not a string array", key)
	}
}

func parsePublicKeyPEM(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPub, nil
}

// refreshKeys fetches the JWKS document and replaces the cached key set
// wholesale, so rotated-out kids stop verifying.
func (v *Verifier) refreshKeys() error {
	if v.config.JWKSURL == "" {
		return fmt.Errorf("no JWKS URL configured")
	}

	resp, err := v.httpClient.Get(v.config.JWKSURL)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read JWKS response: %w", err)
	}
	var jwks JWKSet
	if err := json.Unmarshal(body, &jwks); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	now := time.Now()
	fresh := make(map[string]cachedKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" || k.Use != "sig" || k.Alg != "RS256" {
			continue
		}
		pub, err := jwkToPublicKey(k)
		if err != nil {
			continue // skip malformed keys, keep the rest
		}
		fresh[k.Kid] = cachedKey{key: pub, fetched: now}
	}

	v.mu.Lock()
	v.keys = fresh
	v.lastFetch = now
	v.mu.Unlock()
	return nil
}

// keyForKid returns the public key for kid, refreshing the cached set
// when the entry has gone stale. An unknown kid triggers a refresh only
// after the refresh interval has passed, so a flood of bogus kids cannot
// hammer the JWKS endpoint.
func (v *Verifier) keyForKid(kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	entry, exists := v.keys[kid]
	lastFetch := v.lastFetch
	v.mu.RUnlock()

	if exists && time.Since(entry.fetched) < v.config.JWKSCacheTimeout {
		return entry.key, nil
	}

	if exists || time.Since(lastFetch) >= v.config.JWKSRefreshInterval {
		if err := v.refreshKeys(); err != nil {
			return nil, fmt.Errorf("refresh JWKS: %w", err)
		}
		v.mu.RLock()
		entry, exists = v.keys[kid]
		v.mu.RUnlock()
		if exists {
			return entry.key, nil
		}
	}

	return nil, fmt.Errorf("no key for kid %q", kid)
}

// jwkToPublicKey assembles an rsa.PublicKey from a JWK's modulus and
// exponent.
func jwkToPublicKey(jwk JWK) (*rsa.PublicKey, error) {
	n, err := base64URLDecode(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	e, err := base64URLDecode(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	var exp int
	for _, b := range e {
		exp = exp<<8 + int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: exp}, nil
}

// base64URLDecode decodes unpadded base64url data, the JWK wire format
// for modulus and exponent.
func base64URLDecode(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(data)
}
