package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/tracing"
)

// DefaultTimeout bounds a single callback delivery.
const DefaultTimeout = 30 * time.Second

// Notifier delivers result callbacks to caller-provided URLs. Delivery is
// best effort: Send reports success or failure but never returns an error,
// since a job's outcome is final by the time its callback fires.
type Notifier struct {
	client *http.Client
	log    *logging.Logger
}

// New creates a Notifier with the given timeout; zero means DefaultTimeout.
func New(timeout time.Duration, log *logging.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Send POSTs payload as JSON to url and reports whether the receiver
// acknowledged with a 2xx status.
func (n *Notifier) Send(ctx context.Context, url string, payload interface{}) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error("Failed to encode callback payload", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.log.Error("Failed to build callback request", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectHTTPHeaders(ctx, req)

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("Callback delivery failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.log.Warn("Callback receiver returned non-2xx status", map[string]interface{}{
			"url":    url,
			"status": resp.StatusCode,
		})
		return false
	}

	n.log.Debug("Callback delivered", map[string]interface{}{"url": url})
	return true
}
