package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ProviderVerifier presents the bearer token to an external identity
// provider as a user-identifier lookup. Any non-200 answer or transport
// failure rejects the token.
type ProviderVerifier struct {
	baseURL string
	client  *http.Client
}

func NewProviderVerifier(baseURL string) *ProviderVerifier {
	return &ProviderVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *ProviderVerifier) Verify(ctx context.Context, token string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s", v.baseURL, url.PathEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity provider rejected token: status %d", resp.StatusCode)
	}

	var userInfo struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}
	if userInfo.UserID == "" {
		return "", fmt.Errorf("identity provider returned no user id")
	}
	return userInfo.UserID, nil
}
