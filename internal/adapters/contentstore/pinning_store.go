package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/credexa/carbon_ledger_app/internal/apperrors"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
)

// PinningStore talks to a Pinata-style pinning service for writes and races
// a set of mirror gateways for reads. Writes retry with bounded exponential
// backoff; reads take the first gateway that answers 200 within the
// per-gateway timeout.
type PinningStore struct {
	apiURL         string
	apiKey         string
	apiSecret      string
	gateways       []string
	gatewayTimeout time.Duration
	client         *http.Client
}

var _ portsrepo.ContentStore = (*PinningStore)(nil)

// PinningConfig holds the pinning-service endpoint and gateway mirrors.
type PinningConfig struct {
	APIURL         string
	APIKey         string
	APISecret      string
	Gateways       []string
	GatewayTimeout time.Duration
}

// NewPinningStore creates a content store backed by a remote pinning service.
func NewPinningStore(cfg PinningConfig) *PinningStore {
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &PinningStore{
		apiURL:         cfg.APIURL,
		apiKey:         cfg.APIKey,
		apiSecret:      cfg.APISecret,
		gateways:       cfg.Gateways,
		gatewayTimeout: timeout,
		client:         &http.Client{Timeout: timeout},
	}
}

type pinRequest struct {
	PinataContent  json.RawMessage `json:"pinataContent"`
	PinataMetadata pinMetadata     `json:"pinataMetadata"`
}

type pinMetadata struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Write pins the blob with its tags as metadata keyvalues and returns the
// CID reported by the service. Transient failures are retried up to three
// times with exponential backoff; exhaustion or misconfiguration surfaces
// as ErrStorageUnavailable so callers can degrade to the volatile store.
func (s *PinningStore) Write(ctx context.Context, blob []byte, tags map[string]string) (string, error) {
	if s.apiURL == "" {
		return "", fmt.Errorf("%w: pinning service not configured", apperrors.ErrStorageUnavailable)
	}

	body, err := json.Marshal(pinRequest{
		PinataContent:  json.RawMessage(blob),
		PinataMetadata: pinMetadata{Name: tags[portsrepo.TagAccountKey], KeyValues: tags},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode pin request: %w", err)
	}

	var cid string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		s.authorize(req)

		resp, err := s.client.Do(req)
		if err != nil {
			// Network errors are retryable
			return fmt.Errorf("failed to reach pinning service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("pinning service returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("pinning service rejected blob, status %d: %s", resp.StatusCode, string(respBody)))
		}

		var pinned pinResponse
		if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode pin response: %w", err))
		}
		if pinned.IpfsHash == "" {
			return backoff.Permanent(fmt.Errorf("pinning service returned empty hash"))
		}
		cid = pinned.IpfsHash
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.RandomizationFactor = 0.5

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, 3), ctx)); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return cid, nil
}

// Read fetches the blob by racing all configured gateways concurrently and
// returning the first success. Returns ErrNotFound when no gateway produces
// the blob within its timeout.
func (s *PinningStore) Read(ctx context.Context, cid string) ([]byte, error) {
	if len(s.gateways) == 0 {
		return nil, fmt.Errorf("%w: no gateways configured", apperrors.ErrStorageUnavailable)
	}

	type result struct {
		blob []byte
		err  error
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan result, len(s.gateways))
	var wg sync.WaitGroup

	for _, gateway := range s.gateways {
		wg.Add(1)
		go func(gw string) {
			defer wg.Done()

			gwCtx, gwCancel := context.WithTimeout(raceCtx, s.gatewayTimeout)
			defer gwCancel()

			blob, err := s.fetchFromGateway(gwCtx, gw, cid)
			resultCh <- result{blob: blob, err: err}
		}(gateway)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var lastErr error
	for res := range resultCh {
		if res.err == nil {
			// Abort the losing gateway attempts.
			cancel()
			return res.blob, nil
		}
		lastErr = res.err
	}

	return nil, fmt.Errorf("blob %s not served by any gateway (%v): %w", cid, lastErr, apperrors.ErrNotFound)
}

func (s *PinningStore) fetchFromGateway(ctx context.Context, gateway, cid string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/ipfs/%s", gateway, cid), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

type pinListResponse struct {
	Rows []struct {
		IpfsPinHash string `json:"ipfs_pin_hash"`
	} `json:"rows"`
}

// FindLatestCID queries the pinning service's metadata search for the most
// recent pin tagged with the given key/value.
func (s *PinningStore) FindLatestCID(ctx context.Context, tag, value string) (string, error) {
	if s.apiURL == "" {
		return "", fmt.Errorf("%w: pinning service not configured", apperrors.ErrStorageUnavailable)
	}

	filter := fmt.Sprintf(`{"value":%q,"op":"eq"}`, value)
	query := url.Values{}
	query.Set("status", "pinned")
	query.Set("pageLimit", "1")
	query.Set(fmt.Sprintf("metadata[keyvalues][%s]", tag), filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/data/pinList?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: pin list returned status %d", apperrors.ErrStorageUnavailable, resp.StatusCode)
	}

	var list pinListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("failed to decode pin list: %w", err)
	}
	if len(list.Rows) == 0 {
		return "", fmt.Errorf("tag %s=%s: %w", tag, value, apperrors.ErrNotFound)
	}
	return list.Rows[0].IpfsPinHash, nil
}

func (s *PinningStore) authorize(req *http.Request) {
	req.Header.Set("pinata_api_key", s.apiKey)
	req.Header.Set("pinata_secret_api_key", s.apiSecret)
}
