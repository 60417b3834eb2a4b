package member

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"collectible-order/internal/domain"
)

// Directory resolves members and their wallet addresses.
type Directory interface {
	// FindWallet returns "" when the member has no wallet.
	FindWallet(ctx context.Context, memberID int64) (string, error)
	// FindMember returns nil, nil when the member does not exist.
	FindMember(ctx context.Context, memberID int64) (*domain.Member, error)
}

// Client talks to the member service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) FindWallet(ctx context.Context, memberID int64) (string, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/members/%d/wallet", memberID))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("find wallet: member service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return "", fmt.Errorf("find wallet: read body: %w", err)
	}
	return parseWallet(body), nil
}

// parseWallet accepts a JSON string, JSON null or a bare address. Null and
// blank both mean the member has no wallet.
func parseWallet(body []byte) string {
	var addr *string
	if err := json.Unmarshal(body, &addr); err == nil {
		if addr == nil {
			return ""
		}
		return strings.TrimSpace(*addr)
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) FindMember(ctx context.Context, memberID int64) (*domain.Member, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/members/%d", memberID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("find member: member service returned %d", resp.StatusCode)
	}

	var m domain.Member
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("find member: decode: %w", err)
	}
	return &m, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("member service %s: %w", path, err)
	}
	return resp, nil
}
