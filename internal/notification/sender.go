// Package notification defines the boundary to SMS and email delivery.
// Actual delivery mechanics live outside this service; the log sender stands
// in wherever no provider is wired.
package notification

import "context"

// Sender delivers messages to a recipient out-of-band.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, body string) error
}
