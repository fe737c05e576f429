package daraja

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// tokenSafetyMargin is subtracted from the gateway-advertised lifetime so a
// cached token is never used right at its expiry edge.
const tokenSafetyMargin = 60 * time.Second

// fallbackTokenTTL is used when the gateway response omits a parseable
// expires_in. Daraja tokens advertise 3599s; 3500s keeps a margin.
const fallbackTokenTTL = 3500 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// token returns the cached access token, refreshing it via the credential
// exchange when expired. The mutex covers check-then-refresh, so concurrent
// callers during an expired window produce a single exchange.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrAuth, err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: gateway returned status %d", ErrAuth, res.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrAuth, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: response missing access_token", ErrAuth)
	}

	ttl := fallbackTokenTTL
	if secs, err := strconv.Atoi(body.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs)*time.Second - tokenSafetyMargin
		if ttl <= 0 {
			ttl = time.Duration(secs) * time.Second / 2
		}
	}

	c.accessToken = body.AccessToken
	c.tokenExpiry = c.now().Add(ttl)
	return c.accessToken, nil
}
