package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alzy/commerce-api/internal/logging"
)

// Event channels.
const (
	EventUserRegistered = "user.registered"
	EventCartItemAdded  = "cart.item_added"
)

// UserRegistered is published after a successful registration.
type UserRegistered struct {
	UserID     int       `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CartItemAdded is published after a new cart line is created.
type CartItemAdded struct {
	UserID     int       `json:"user_id"`
	ProductID  int       `json:"product_id"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers an encoded event to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Events publishes domain events on a best-effort basis. A nil *Events or a
// nil publisher drops events silently; delivery failures are logged and
// never fail the calling operation.
type Events struct {
	publisher Publisher
	logger    logging.Logger
	now       func() time.Time
}

func NewEvents(publisher Publisher, logger logging.Logger) *Events {
	return &Events{publisher: publisher, logger: logger, now: time.Now}
}

func (e *Events) userRegistered(ctx context.Context, userID int, email string) {
	if e == nil {
		return
	}
	e.emit(ctx, EventUserRegistered, UserRegistered{UserID: userID, Email: email, OccurredAt: e.now().UTC()})
}

func (e *Events) cartItemAdded(ctx context.Context, item CartItemAdded) {
	if e == nil {
		return
	}
	item.OccurredAt = e.now().UTC()
	e.emit(ctx, EventCartItemAdded, item)
}

func (e *Events) emit(ctx context.Context, channel string, payload any) {
	if e.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error(ctx, "encode event", "channel", channel, "error", err)
		return
	}
	id, err := e.publisher.Publish(ctx, channel, data, map[string]string{"event": channel})
	if err != nil {
		e.logger.Warn(ctx, "publish event", "channel", channel, "error", err)
		return
	}
	e.logger.Debug(ctx, "event published", "channel", channel, "message_id", id)
}
