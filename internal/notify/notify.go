// Package notify provides notification delivery backends (email, webhook)
// and a retrying fan-out wrapper. Senders are best-effort: the workflow
// layer treats a failed send as retryable, never fatal to the run.
package notify
