package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"weighstation/internal/models"
)

// Fixed command vocabulary of the monitoring endpoint.
const (
	deviceBarrierGate = "BARRIER_GATE"
	commandOpen       = "OPEN"
)

const (
	dispatchStatusRegistered = "REGISTERED"
	defaultHistorySize       = 20
	maxResponseBytes         = 1 << 20 // 1 MB
)

// Client is the stateless command client for the weighing backend. All
// calls go through the versioned base path, carry a bearer token and a
// correlation id, and unwrap the response envelope.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient builds a client for baseURL (the versioned root, e.g.
// "https://host/api/v1"). A nil httpClient gets a 15s-timeout default;
// a hung request is otherwise bounded only by that timeout.
func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:  tokens,
		http:    httpClient,
	}
}

// SearchDispatches returns dispatches ready for weighing, filtered by
// plate number.
func (c *Client) SearchDispatches(ctx context.Context, plateNumber string) ([]models.DispatchSearchResult, error) {
	q := url.Values{}
	q.Set("plateNumber", plateNumber)
	q.Set("status", dispatchStatusRegistered)

	var out []models.DispatchSearchResult
	if err := c.call(ctx, http.MethodGet, "/dispatches?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWeighing submits a manual weighing.
func (c *Client) CreateWeighing(ctx context.Context, req models.CreateWeighingRequest) error {
	return c.call(ctx, http.MethodPost, "/weighings", req, nil)
}

type resetRequest struct {
	ScaleID string `json:"scaleId"`
}

// ResetScale resets the weighing process for one scale.
func (c *Client) ResetScale(ctx context.Context, scaleID string) error {
	return c.call(ctx, http.MethodPost, "/weighings/reset", resetRequest{ScaleID: scaleID}, nil)
}

type deviceCommandRequest struct {
	DeviceType string `json:"deviceType"`
	Command    string `json:"command"`
}

// OpenBarrier asks the monitoring service to open the barrier gate.
func (c *Client) OpenBarrier(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/monitoring/devices/cmd", deviceCommandRequest{
		DeviceType: deviceBarrierGate,
		Command:    commandOpen,
	}, nil)
}

// SimulatorCommand forwards a stimulus to the backend LPR simulator.
func (c *Client) SimulatorCommand(ctx context.Context, cmd models.SimulatorCommand) error {
	return c.call(ctx, http.MethodPost, "/lpr/simulator", cmd, nil)
}

// RecentWeighings fetches the newest weighing records. size<=0 falls back
// to the default page size.
func (c *Client) RecentWeighings(ctx context.Context, size int) ([]models.WeighingHistoryRecord, error) {
	if size <= 0 {
		size = defaultHistorySize
	}
	q := url.Values{}
	q.Set("size", strconv.Itoa(size))
	q.Set("sort", "createdAt,desc")

	var page Page[models.WeighingHistoryRecord]
	if err := c.call(ctx, http.MethodGet, "/weighings?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// call performs one authenticated round trip. A 401 triggers a single
// refresh-and-retry; the refresh itself is shared across concurrent
// callers by the token source.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}

	status, raw, err := c.roundTrip(ctx, method, path, body, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("authorize: %w", err)
		}
		status, raw, err = c.roundTrip(ctx, method, path, body, token)
		if err != nil {
			return err
		}
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("backend http %d: %s", status, strings.TrimSpace(string(raw)))
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return env.Decode(out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, token string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
