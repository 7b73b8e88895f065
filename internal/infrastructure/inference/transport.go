package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/weekly-issue/internal/infrastructure/resilience"
)

type endpoint struct {
	service    string
	url        string
	httpClient *http.Client
	executor   *resilience.Executor
}

func newEndpoint(service, url string, timeout time.Duration, httpClient *http.Client, executor *resilience.Executor) endpoint {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return endpoint{
		service:    service,
		url:        strings.TrimSpace(url),
		httpClient: httpClient,
		executor:   executor,
	}
}

func (e endpoint) call(ctx context.Context, operation string, payload any, out any) error {
	attempt := func(ctx context.Context) error {
		return e.postJSON(ctx, payload, out, operation)
	}
	if e.executor == nil {
		return attempt(ctx)
	}
	return e.executor.Execute(ctx, operation, attempt, classifyError)
}

func (e endpoint) postJSON(ctx context.Context, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request: %w", e.service, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPStatusError(e.service, operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func newHTTPStatusError(service, operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Service:    service,
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}
