// Package workflow starts process instances on the external BPMN engine.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type startRequest struct {
	ProcessDefinitionKey string                 `json:"processDefinitionKey"`
	Variables            map[string]interface{} `json:"variables"`
}

type startResponse struct {
	ProcessInstanceKey json.RawMessage `json:"processInstanceKey"`
}

// Client talks to the engine's REST gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StartPaymentWorkflow creates a process instance and returns its key.
func (c *Client) StartPaymentWorkflow(ctx context.Context, processDefinitionKey string, variables map[string]interface{}) (string, error) {
	body, err := json.Marshal(startRequest{
		ProcessDefinitionKey: processDefinitionKey,
		Variables:            variables,
	})
	if err != nil {
		return "", fmt.Errorf("encode start request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-instances", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "walletcore-workflow/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("start process %s: %w", processDefinitionKey, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read start response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("start process %s: engine returned %d: %s",
			processDefinitionKey, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out startResponse
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &out); err != nil {
			return "", fmt.Errorf("decode start response: %w", err)
		}
	}
	return instanceKey(out.ProcessInstanceKey), nil
}

// instanceKey accepts the key as a JSON string or number.
func instanceKey(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// LogStarter only logs. It is used when no engine is configured.
type LogStarter struct{}

func (LogStarter) StartPaymentWorkflow(ctx context.Context, processDefinitionKey string, variables map[string]interface{}) (string, error) {
	slog.InfoContext(ctx, "workflow engine not configured, skipping start",
		"process_definition_key", processDefinitionKey,
		"correlation_id", variables["correlationId"])
	return "", nil
}
