// internal/clients/account_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"foodwise/internal/account"

	"github.com/google/uuid"
)

// AccountClient talks to the account service over HTTP.
type AccountClient struct {
	baseURL string
}

func NewAccountClient(baseURL string) *AccountClient {
	return &AccountClient{baseURL: baseURL}
}

func (c *AccountClient) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/accounts/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, account.ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var acct account.Account
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return nil, err
	}
	return &acct, nil
}
