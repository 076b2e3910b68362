package alert

import "context"

// Notifier delivers one down-alert to an owner contact. One attempt per
// call, no internal retry; the monitor treats failures as log-only.
//
// contact is transport-specific (an e-mail address, a webhook override)
// and may be ignored by transports with a fixed destination.
type Notifier interface {
	Send(ctx context.Context, contact, url, reason string) error
}

// Multi fans one alert out to several transports. The first error wins but
// every transport still gets its attempt.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, contact, url, reason string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, contact, url, reason); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
