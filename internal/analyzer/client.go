package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const analyzePath = "/analyze"

// Response bodies are read fully for error inspection; base64 PDF payloads
// dominate the size, so the cap is generous.
const maxBodyBytes = 32 << 20

// Client speaks the /analyze contract of the remote analysis service. The
// base URL is fixed for the client's lifetime.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the given base URL. A zero timeout leaves the
// request unbounded; any deadline then comes from the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Address string `json:"address"`
}

// Analyze submits one address and returns the parsed result. The address is
// trimmed first; an empty address fails with ValidationError before any
// network activity. Failure responses yield ServiceError, missing responses
// TransportError.
func (c *Client) Analyze(ctx context.Context, address string) (*AnalysisResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &ValidationError{Msg: "address required"}
	}

	payload, err := json.Marshal(analyzeRequest{Address: address})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Detail: failureDetail(body)}
	}

	var result AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Detail: fallbackServiceMessage}
	}
	return &result, nil
}

// failureDetail pulls the human-readable description out of a failure body.
// Missing or unparsable bodies are tolerated and fall back to the generic
// message.
func failureDetail(body []byte) string {
	if d := gjson.GetBytes(body, "detail"); d.Exists() && d.String() != "" {
		return d.String()
	}
	return fallbackServiceMessage
}
