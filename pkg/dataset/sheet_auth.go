package dataset

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyServiceAccount = errors.New("service account email cannot be empty")
	ErrBadPrivateKey       = errors.New("invalid service account private key")
	ErrTokenExchange       = errors.New("token exchange failed")
)

const (
	defaultTokenURL      = "https://oauth2.googleapis.com/token"
	defaultSheetScope    = "https://www.googleapis.com/auth/spreadsheets.readonly"
	jwtBearerGrant       = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime    = time.Hour
	tokenExpirySlack     = time.Minute
	tokenExchangeTimeout = 15 * time.Second
)

// ServiceAccount holds the credentials used to sign access-token
// assertions for the sheet API.
type ServiceAccount struct {
	Email         string
	PrivateKeyPEM []byte
	TokenURL      string // defaults to the Google OAuth2 endpoint
	Scope         string // defaults to read-only spreadsheet access
}

// tokenSource exchanges a signed RS256 assertion for a bearer token
// and caches it until shortly before expiry.
type tokenSource struct {
	account ServiceAccount
	key     *rsa.PrivateKey
	client  *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenSource(account ServiceAccount, client *http.Client) (*tokenSource, error) {
	if account.Email == "" {
		return nil, ErrEmptyServiceAccount
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(account.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPrivateKey, err)
	}
	if account.TokenURL == "" {
		account.TokenURL = defaultTokenURL
	}
	if account.Scope == "" {
		account.Scope = defaultSheetScope
	}
	if client == nil {
		client = &http.Client{Timeout: tokenExchangeTimeout}
	}
	return &tokenSource{account: account, key: key, client: client}, nil
}

// Token returns a valid bearer token, exchanging a fresh assertion
// when the cached one is about to expire.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expires.Add(-tokenExpirySlack)) {
		return ts.token, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.account.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTokenExchange, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	ts.token = body.AccessToken
	ts.expires = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return ts.token, nil
}

func (ts *tokenSource) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.account.Email,
		"scope": ts.account.Scope,
		"aud":   ts.account.TokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(ts.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}
