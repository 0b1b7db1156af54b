package port

import "context"

// Notifier delivers out-of-band verification messages. Delivery is
// fire-and-forget from the workflow's perspective: callers log failures and
// continue, they never fail the triggering operation.
type Notifier interface {
	SendSMS(ctx context.Context, phone, body string) error
	SendEmail(ctx context.Context, address, body string) error
}
