package notify

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
)

// Retry settings (can be tuned in tests)
var notifierMaxRetries = 3
var notifierBaseBackoff = 100 * time.Millisecond

// notifierBackoffJitter adds up to this random duration to backoff (to avoid thundering herd)
var notifierBackoffJitter = 0 * time.Millisecond

// sleepHook is used in tests to avoid sleeping for real
var sleepHook = time.Sleep

// Service is the interface all notification backends must implement.
type Service interface {
	Send(ctx context.Context, to, subject, body string) error
	Name() string
}

// MultiNotifier bundles the active backends. A send succeeds when at least
// one backend accepted the notification; it fails only when every backend
// exhausted its retries, so the caller can schedule another attempt.
type MultiNotifier struct {
	services []Service
}

// NewMultiNotifier returns an empty notifier. Send on an empty notifier is a
// no-op success; reminders then exist only in the log (flagged by config
// validation at startup).
func NewMultiNotifier() *MultiNotifier {
	return &MultiNotifier{services: make([]Service, 0)}
}

// Add registers a backend.
func (m *MultiNotifier) Add(s Service) {
	if s != nil {
		m.services = append(m.services, s)
	}
}

// Len returns the number of registered backends.
func (m *MultiNotifier) Len() int {
	return len(m.services)
}

// Send delivers the notification through every backend, retrying each with
// backoff. Returns nil when any backend succeeded.
func (m *MultiNotifier) Send(ctx context.Context, to, subject, body string) error {
	if len(m.services) == 0 {
		logging.Get().Info().Str("to", to).Str("subject", subject).Msg("no notification backends configured; dropping")
		return nil
	}
	var errs []error
	delivered := false
	for _, s := range m.services {
		if err := m.sendWithRetries(ctx, s, to, subject, body); err != nil {
			logging.Get().Error().Err(err).Str("service", s.Name()).Msg("all notification retries failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	return errors.Join(errs...)
}

// sendWithRetries attempts a single backend with retries and backoff.
// Returns the last error if all attempts fail.
func (m *MultiNotifier) sendWithRetries(ctx context.Context, s Service, to, subject, body string) error {
	var lastErr error
	for attempt := 1; attempt <= notifierMaxRetries; attempt++ {
		if err := s.Send(ctx, to, subject, body); err != nil {
			lastErr = err
			logging.Get().Warn().Err(err).Str("service", s.Name()).Int("attempt", attempt).Msg("notification attempt failed")
			if attempt < notifierMaxRetries {
				// context-aware sleep: allow cancellation via ctx, but use sleepHook to speed tests.
				d := backoffDuration(attempt)
				dCh := make(chan struct{})
				go func() {
					sleepHook(d)
					close(dCh)
				}()
				select {
				case <-dCh:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			continue
		}
		logging.Get().Debug().Str("service", s.Name()).Str("to", to).Msg("notification sent")
		return nil
	}
	return lastErr
}

// backoffDuration returns the computed backoff including optional jitter for the given attempt
func backoffDuration(attempt int) time.Duration {
	d := notifierBaseBackoff * time.Duration(1<<uint(attempt-1))
	if notifierBackoffJitter > 0 {
		// Use crypto/rand to generate non-predictable jitter for backoff
		max := big.NewInt(int64(notifierBackoffJitter))
		if n, err := crand.Int(crand.Reader, max); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}

// postJSON is a shared helper used by providers
func postJSON(ctx context.Context, url string, data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}
	return nil
}
