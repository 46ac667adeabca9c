// internal/clients/listing_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"foodwise/internal/listing"

	"github.com/google/uuid"
)

// ListingClient talks to the listing service over HTTP.
type ListingClient struct {
	baseURL string
}

func NewListingClient(baseURL string) *ListingClient {
	return &ListingClient{baseURL: baseURL}
}

func (c *ListingClient) GetListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/listings/%s", c.baseURL, id), nil)
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
		return nil, listing.ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var item listing.Listing
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Withdraw asks the listing service to mark a listing unavailable on the
// owner's behalf. Service error taxonomy is reconstructed from the status
// code.
func (c *ListingClient) Withdraw(ctx context.Context, id, ownerID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/listings/%s/withdraw", c.baseURL, id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Actor-ID", ownerID.String())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return listing.ErrNotFound
	case http.StatusForbidden:
		return listing.ErrNotOwner
	case http.StatusConflict:
		return listing.ErrAlreadyConfirmed
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
