package service

import (
	"context"
	"time"

	"github.com/lumiskin/skincare-backend/pkg/oauth"
)

// EventPublisher pushes realtime events to connected clients
type EventPublisher interface {
	NotifyUser(userID uint, eventType string, payload interface{})
	NotifyBackoffice(eventType string, payload interface{})
}

// Realtime event names
const (
	EventCartUpdated        = "cart_updated"
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventPaymentCompleted   = "payment_completed"
)

type noopPublisher struct{}

func (noopPublisher) NotifyUser(uint, string, interface{}) {}
func (noopPublisher) NotifyBackoffice(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// IdentityVerifier resolves a provider token to the account it belongs to
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*oauth.Identity, error)
}

// TokenRevoker blacklists access tokens on logout
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// JSONCache stores JSON-encodable values with a TTL
type JSONCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
