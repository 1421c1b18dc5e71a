package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
)

const maxErrorBody = 4096

// SystemConfig describes how to reach one target system
type SystemConfig struct {
	System  string
	BaseURL string
	Token   string
	Timeout time.Duration
	// UndoNoop makes every undo succeed without a call, for systems whose
	// actions cannot be taken back (a sent notification)
	UndoNoop bool
}

// RESTClient talks JSON over HTTP to one target system. Forward actions are
// POST {base}/{action}; compensations are POST {base}/{action}/undo.
type RESTClient struct {
	cfg        SystemConfig
	httpClient *http.Client
}

// NewRESTClient creates a client for one target system
func NewRESTClient(cfg SystemConfig) *RESTClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &RESTClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// System returns the target system identifier
func (c *RESTClient) System() string {
	return c.cfg.System
}

// Action returns the step adapter for one action of the system
func (c *RESTClient) Action(action string) domain.StepAdapter {
	return &restAction{client: c, action: action}
}

type undoRequest struct {
	Request domain.StepRequest `json:"request"`
	Output  json.RawMessage    `json:"output,omitempty"`
}

type restAction struct {
	client *RESTClient
	action string
}

func (a *restAction) Apply(ctx context.Context, req domain.StepRequest) (json.RawMessage, error) {
	return a.client.post(ctx, a.action, a.action, req)
}

func (a *restAction) Undo(ctx context.Context, req domain.StepRequest, output json.RawMessage) error {
	if a.client.cfg.UndoNoop {
		return nil
	}
	_, err := a.client.post(ctx, a.action, a.action+"/undo", undoRequest{Request: req, Output: output})
	return err
}

func (c *RESTClient) post(ctx context.Context, action, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewPermanentError(c.cfg.System, action, "invalid_request", errors.Wrap(err, "marshal request"))
	}

	url := fmt.Sprintf("%s/%s", c.cfg.BaseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewPermanentError(c.cfg.System, action, "invalid_request", errors.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if r, ok := payload.(domain.StepRequest); ok {
		// Lets the target system deduplicate re-driven calls.
		req.Header.Set("Idempotency-Key", r.StepID.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewRetriableError(c.cfg.System, action, errors.Wrap(err, "call failed"))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewRetriableError(c.cfg.System, action, errors.Wrap(err, "read response"))
	}

	if resp.StatusCode >= 300 {
		return nil, classify(c.cfg.System, action, resp.StatusCode, respBody)
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	if !json.Valid(respBody) {
		return nil, domain.NewPermanentError(c.cfg.System, action, "invalid_response", errors.New("response is not valid JSON"))
	}
	return json.RawMessage(respBody), nil
}

// classify maps an HTTP failure to an adapter error. Timeouts, throttling
// and server errors may succeed later; other client errors will not.
func classify(system, action string, status int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	err := errors.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))

	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= 500:
		return domain.NewRetriableError(system, action, err)
	default:
		return domain.NewPermanentError(system, action, fmt.Sprintf("http_%d", status), err)
	}
}
