// chaos/experiments.go
package chaos

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RegisterExperiments registers the predefined FoodWise experiments.
func (e *Engine) RegisterExperiments() {
	e.Register(e.ConcurrentClaimRaceExperiment(25))
	e.Register(e.ConnectionPoolExhaustionExperiment())
}

// doubleConfirmations counts listings that ended up with more than one
// accepted claim. Anything above zero means the one-shot claim transition was
// violated.
func (e *Engine) doubleConfirmations(ctx context.Context) (float64, error) {
	var count int
	err := e.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT listing_id FROM claims
			WHERE outcome = 'accepted'
			GROUP BY listing_id
			HAVING COUNT(*) > 1
		) doubly_claimed
	`).Scan(&count)
	return float64(count), err
}

// orphanedConfirmations counts confirmed listings without any accepted claim,
// the other direction of status/claim coherence.
func (e *Engine) orphanedConfirmations(ctx context.Context) (float64, error) {
	var count int
	err := e.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM listings l
		WHERE l.status = 'confirmed'
		AND NOT EXISTS (
			SELECT 1 FROM claims c
			WHERE c.listing_id = l.id AND c.outcome = 'accepted'
		)
	`).Scan(&count)
	return float64(count), err
}

// ConcurrentClaimRaceExperiment fires many simultaneous claims at one
// available listing through the gateway and verifies that exactly one wins.
func (e *Engine) ConcurrentClaimRaceExperiment(claimants int) Experiment {
	return Experiment{
		Name:       "concurrent-claim-race",
		Hypothesis: "Exactly one of many simultaneous claimants confirms a listing",
		SteadyState: []Metric{
			{
				Name:      "double_confirmations",
				Query:     e.doubleConfirmations,
				Threshold: Threshold{Operator: "==", Value: 0},
			},
			{
				Name:      "orphaned_confirmations",
				Query:     e.orphanedConfirmations,
				Threshold: Threshold{Operator: "==", Value: 0},
			},
		},
		Method: []Action{
			{
				Type:   "concurrent-requests",
				Target: "claim-service",
				Execute: func(ctx context.Context) error {
					ownerID, err := e.registerActor(ctx, "race-owner", "restaurant")
					if err != nil {
						return fmt.Errorf("register owner: %w", err)
					}
					listingID, err := e.postListing(ctx, ownerID)
					if err != nil {
						return fmt.Errorf("post listing: %w", err)
					}

					ids := make([]uuid.UUID, claimants)
					for i := range ids {
						id, err := e.registerActor(ctx, fmt.Sprintf("race-claimant-%d", i), "ngo")
						if err != nil {
							return fmt.Errorf("register claimant %d: %w", i, err)
						}
						ids[i] = id
					}

					var wg sync.WaitGroup
					accepted := 0
					var mu sync.Mutex
					for _, claimantID := range ids {
						wg.Add(1)
						go func(claimantID uuid.UUID) {
							defer wg.Done()
							if e.postClaim(ctx, listingID, claimantID) {
								mu.Lock()
								accepted++
								mu.Unlock()
							}
						}(claimantID)
					}
					wg.Wait()

					if accepted != 1 {
						return fmt.Errorf("expected exactly 1 accepted claim, got %d", accepted)
					}
					return nil
				},
			},
		},
		Validation: []Assertion{
			{
				Metric:    "double_confirmations",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "No listing may carry more than one accepted claim",
			},
		},
		Duration: 10 * time.Second,
	}
}

// ConnectionPoolExhaustionExperiment holds database connections and checks
// that claim consistency survives the pressure.
func (e *Engine) ConnectionPoolExhaustionExperiment() Experiment {
	return Experiment{
		Name:       "database-connection-pool-exhaustion",
		Hypothesis: "Claim consistency holds while the connection pool is saturated",
		SteadyState: []Metric{
			{
				Name:      "double_confirmations",
				Query:     e.doubleConfirmations,
				Threshold: Threshold{Operator: "==", Value: 0},
			},
		},
		Method: []Action{
			{
				Type:   "exhaust-connections",
				Target: "postgres-connection-pool",
				Execute: func(ctx context.Context) error {
					conns := make([]*sql.Conn, 0)
					for i := 0; i < 50; i++ {
						conn, err := e.db.Conn(ctx)
						if err != nil {
							break
						}
						conns = append(conns, conn)
					}
					time.Sleep(15 * time.Second)
					for _, conn := range conns {
						conn.Close()
					}
					return nil
				},
			},
		},
		Validation: []Assertion{
			{
				Metric:    "double_confirmations",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "Consistency must hold under connection pressure",
			},
		},
		Duration: 30 * time.Second,
	}
}

func (e *Engine) registerActor(ctx context.Context, name, role string) (uuid.UUID, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    fmt.Sprintf("%s-%s@chaos.foodwise.local", name, uuid.NewString()[:8]),
		"name":     name,
		"role":     role,
		"password": "ChaosRun123!",
	})
	resp, err := e.post(ctx, "/api/v1/accounts/register", body)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var acct struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return uuid.Nil, err
	}
	return acct.ID, nil
}

func (e *Engine) postListing(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"owner_id": ownerID,
		"item":     "Cooked meals - 20 boxes",
		"qty":      "20 boxes",
		"location": "Campus Block A",
		"contact":  "chaos@foodwise.local",
	})
	resp, err := e.post(ctx, "/api/v1/listings", body)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var item struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return uuid.Nil, err
	}
	return item.ID, nil
}

func (e *Engine) postClaim(ctx context.Context, listingID, claimantID uuid.UUID) bool {
	body, _ := json.Marshal(map[string]interface{}{
		"listing_id":  listingID,
		"claimant_id": claimantID,
	})
	resp, err := e.post(ctx, "/api/v1/claims", body)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusCreated
}

func (e *Engine) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.gatewayURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}
