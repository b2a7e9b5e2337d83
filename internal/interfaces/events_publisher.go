package interfaces

import "context"

// EventPublisher delivers committed-transaction events to interested
// consumers. Delivery is best effort; the ledger never rolls back a
// committed operation because an event failed to send.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}
