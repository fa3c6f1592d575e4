package notify

import "context"

// Webhook posts notifications as JSON to a generic endpoint.
type Webhook struct{ URL string }

// Name returns the notifier backend name.
func (w *Webhook) Name() string { return "Webhook" }

// Send posts the notification payload to the configured endpoint.
func (w *Webhook) Send(ctx context.Context, to, subject, body string) error {
	payload := map[string]string{"to": to, "subject": subject, "body": body, "agent": "pingup"}
	return postJSON(ctx, w.URL, payload)
}
