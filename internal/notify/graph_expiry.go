package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-player/internal/types"
)

const (
	// expiryWarningDays is the number of days before expiration to show a warning.
	expiryWarningDays = 30
	// expiryCacheTTL is how long to cache the expiry info before re-checking.
	expiryCacheTTL = 1 * time.Hour
)

// SecretExpiryChecker checks Graph client secret expiration on demand with
// caching. The config source is read fresh on every refresh so settings
// changes take effect after Invalidate.
type SecretExpiryChecker struct {
	mu         sync.Mutex
	source     func() types.GraphConfig
	cached     types.SecretExpiryInfo
	lastCheck  time.Time
	httpClient *http.Client
}

// NewSecretExpiryChecker creates an expiry checker reading config from source.
func NewSecretExpiryChecker(source func() types.GraphConfig) *SecretExpiryChecker {
	return &SecretExpiryChecker{
		source:     source,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// Info returns the secret expiry information, refreshing when the cache is stale.
func (c *SecretExpiryChecker) Info() types.SecretExpiryInfo {
	c.mu.Lock()
	if !c.lastCheck.IsZero() && time.Since(c.lastCheck) < expiryCacheTTL {
		info := c.cached
		c.mu.Unlock()
		return info
	}
	c.mu.Unlock()

	return c.refresh()
}

// Invalidate clears the cache. Call this when Graph configuration changes.
func (c *SecretExpiryChecker) Invalidate() {
	c.mu.Lock()
	c.lastCheck = time.Time{}
	c.mu.Unlock()
}

// refresh fetches fresh expiry info from Azure AD and caches the result.
func (c *SecretExpiryChecker) refresh() types.SecretExpiryInfo {
	cfg := c.source()

	var info types.SecretExpiryInfo
	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		info = types.SecretExpiryInfo{Error: "Graph API not configured"}
	} else {
		var err error
		info, err = c.fetchExpiryInfo(&cfg)
		if err != nil {
			info = types.SecretExpiryInfo{Error: err.Error()}
		}
	}

	c.mu.Lock()
	c.cached = info
	c.lastCheck = time.Now()
	c.mu.Unlock()

	return info
}

// applicationResponse represents the Graph API response for an application.
type applicationResponse struct {
	PasswordCredentials []passwordCredential `json:"passwordCredentials"`
}

type passwordCredential struct {
	EndDateTime string `json:"endDateTime"`
}

// fetchExpiryInfo queries the Azure AD Graph API for credential expiry.
func (c *SecretExpiryChecker) fetchExpiryInfo(cfg *types.GraphConfig) (types.SecretExpiryInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
	defer cancel()

	ts, err := TokenSourceContext(ctx, cfg)
	if err != nil {
		return types.SecretExpiryInfo{}, fmt.Errorf("create token source: %w", err)
	}

	token, err := ts.Token()
	if err != nil {
		return types.SecretExpiryInfo{}, fmt.Errorf("acquire token: %w", err)
	}

	apiURL := fmt.Sprintf("%s/applications(appId='%s')", graphBaseURL, url.PathEscape(cfg.ClientID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return types.SecretExpiryInfo{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.SecretExpiryInfo{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return types.SecretExpiryInfo{}, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var appResp applicationResponse
	if err := json.Unmarshal(body, &appResp); err != nil {
		return types.SecretExpiryInfo{}, fmt.Errorf("parse response: %w", err)
	}

	return expiryInfo(appResp.PasswordCredentials, time.Now()), nil
}

// expiryInfo computes the expiry summary from the earliest expiring credential.
func expiryInfo(creds []passwordCredential, now time.Time) types.SecretExpiryInfo {
	var earliest time.Time
	for _, cred := range creds {
		if cred.EndDateTime == "" {
			continue
		}
		expiry, err := time.Parse(time.RFC3339, cred.EndDateTime)
		if err != nil {
			continue
		}
		if earliest.IsZero() || expiry.Before(earliest) {
			earliest = expiry
		}
	}

	if earliest.IsZero() {
		return types.SecretExpiryInfo{Error: "no password credentials found"}
	}

	daysLeft := int(earliest.Sub(now).Hours() / 24)
	if daysLeft < 0 {
		daysLeft = 0
	}

	return types.SecretExpiryInfo{
		ExpiresAt:   earliest.Format(time.RFC3339),
		ExpiresSoon: daysLeft <= expiryWarningDays,
		DaysLeft:    daysLeft,
	}
}
