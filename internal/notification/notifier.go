// Package notification delivers best-effort SMS messages to customers.
// Delivery failure is never allowed to fail a booking operation.
package notification

import "go.uber.org/zap"

// Notifier sends a short text message to a customer phone number. Send
// reports whether the message should be considered delivered; it never
// returns an error to the caller.
type Notifier interface {
	Send(to, body string) bool
	Enabled() bool
}

// Disabled is the Notifier used when no SMS channel is configured or the
// channel failed to initialize. Every send is reported as not delivered.
type Disabled struct {
	logger *zap.Logger
}

// NewDisabled creates a Disabled notifier.
func NewDisabled(logger *zap.Logger) *Disabled {
	return &Disabled{logger: logger}
}

// Send logs that SMS is unavailable and reports the message undelivered.
func (d *Disabled) Send(to, body string) bool {
	d.logger.Warn("sms channel not initialized, message dropped",
		zap.String("to", to),
	)
	return false
}

// Enabled reports that no SMS channel is available.
func (d *Disabled) Enabled() bool { return false }
