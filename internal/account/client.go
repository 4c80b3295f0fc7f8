package account

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"focusguard/internal/schedule"
	"focusguard/internal/state"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRemote           = errors.New("account service error")
)

// User is the identity owned by the remote auth service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SyncedData is the remote copy of the shareable settings. Nil sub-documents
// were never synced and leave local state alone.
type SyncedData struct {
	BlockedSites []string         `json:"blocked_sites"`
	Settings     *state.Settings  `json:"settings"`
	Schedule     *schedule.Config `json:"schedule"`
}

// CheckoutSession points the UI at a hosted checkout or billing portal page.
type CheckoutSession struct {
	URL string `json:"url"`
}

// Client talks JSON-over-HTTP to the remote auth/billing/sync service. Every
// call is fallible; callers fall back to cached or default values.
type Client struct {
	base     string
	http     *http.Client
	tokens   *TokenStore
	deviceID string
}

func NewClient(baseURL string, tokens *TokenStore) *Client {
	return &Client{
		base:     baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		tokens:   tokens,
		deviceID: uuid.NewString(),
	}
}

// IsAuthenticated reports whether a usable session token is on hand. The
// token's expiry claim is read without signature verification; the remote
// service is the authority and rejects bad tokens anyway.
func (c *Client) IsAuthenticated() bool {
	tok := c.tokens.Get()
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// tokens without expiry are trusted until the service rejects them
		return true
	}
	return exp.After(time.Now())
}

// GetUser returns the identity embedded in the session token, or nil when
// signed out.
func (c *Client) GetUser() *User {
	tok := c.tokens.Get()
	if tok == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil
	}
	u := &User{}
	if sub, err := claims.GetSubject(); err == nil {
		u.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	if u.ID == "" && u.Email == "" {
		return nil
	}
	return u
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) SignUp(email, password string) error {
	var tr tokenResponse
	err := c.do(http.MethodPost, "/v1/auth/signup",
		map[string]string{"email": email, "password": password, "device_id": c.deviceID}, &tr, false)
	if err != nil {
		return err
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("%w: empty token in signup response", ErrRemote)
	}
	return c.tokens.Set(tr.AccessToken)
}

func (c *Client) SignIn(email, password string) error {
	var tr tokenResponse
	err := c.do(http.MethodPost, "/v1/auth/login",
		map[string]string{"email": email, "password": password, "device_id": c.deviceID}, &tr, false)
	if err != nil {
		return err
	}
	if tr.AccessToken == "" {
		return fmt.Errorf("%w: empty token in login response", ErrRemote)
	}
	return c.tokens.Set(tr.AccessToken)
}

func (c *Client) SignOut() error {
	_ = c.do(http.MethodPost, "/v1/auth/logout", nil, nil, true)
	return c.tokens.Clear()
}

func (c *Client) ResetPassword(email string) error {
	return c.do(http.MethodPost, "/v1/auth/reset-password", map[string]string{"email": email}, nil, false)
}

func (c *Client) UpdatePassword(password string) error {
	return c.do(http.MethodPut, "/v1/auth/password", map[string]string{"password": password}, nil, true)
}

func (c *Client) UpdateEmail(email string) error {
	return c.do(http.MethodPut, "/v1/auth/email", map[string]string{"email": email}, nil, true)
}

func (c *Client) DeleteAccount() error {
	if err := c.do(http.MethodDelete, "/v1/account", nil, nil, true); err != nil {
		return err
	}
	return c.tokens.Clear()
}

// CheckProStatus asks the billing service for the current tier.
func (c *Client) CheckProStatus() (bool, error) {
	var resp struct {
		IsPro bool `json:"is_pro"`
	}
	if err := c.do(http.MethodGet, "/v1/subscription/status", nil, &resp, true); err != nil {
		return false, err
	}
	return resp.IsPro, nil
}

// RefreshSubscription forces the billing service to re-read the upstream
// subscription record.
func (c *Client) RefreshSubscription() error {
	return c.do(http.MethodPost, "/v1/subscription/refresh", nil, nil, true)
}

func (c *Client) CreateCheckoutSession(priceID string) (*CheckoutSession, error) {
	var cs CheckoutSession
	err := c.do(http.MethodPost, "/v1/billing/checkout", map[string]string{"price_id": priceID}, &cs, true)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (c *Client) CreatePortalSession() (*CheckoutSession, error) {
	var cs CheckoutSession
	if err := c.do(http.MethodPost, "/v1/billing/portal", nil, &cs, true); err != nil {
		return nil, err
	}
	return &cs, nil
}

// SyncData pushes the full state document to the remote store.
func (c *Client) SyncData(doc state.Document) error {
	payload := map[string]any{
		"device_id": c.deviceID,
		"state":     doc,
	}
	return c.do(http.MethodPut, "/v1/sync", payload, nil, true)
}

// LoadSyncedData pulls the remote copy; (nil, nil) means nothing synced yet.
func (c *Client) LoadSyncedData() (*SyncedData, error) {
	var sd SyncedData
	err := c.do(http.MethodGet, "/v1/sync", nil, &sd, true)
	if err != nil {
		if errors.Is(err, errNoContent) {
			return nil, nil
		}
		return nil, err
	}
	return &sd, nil
}

var errNoContent = errors.New("no content")

func (c *Client) do(method, path string, body any, out any, auth bool) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		tok := c.tokens.Get()
		if tok == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		if out == nil {
			return nil
		}
		return errNoContent
	}
	if resp.StatusCode == http.StatusNotFound && out != nil {
		return errNoContent
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrNotAuthenticated
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrRemote, resp.Status, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
