package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckoutPubSub announces sessions that reached the payment stage so the
// payment collaborator can pick them up.
type CheckoutPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewCheckoutPubSub(rdb *redis.Client) *CheckoutPubSub {
	return &CheckoutPubSub{
		rdb:     rdb,
		channel: ChannelCheckoutStarted(),
	}
}

type checkoutStartedMsg struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	TotalCents int64  `json:"total_cents"`
	TsUnix     int64  `json:"ts_unix"`
}

func (p *CheckoutPubSub) PublishCheckoutStarted(ctx context.Context, sessionID string, totalCents int64) error {
	msg := checkoutStartedMsg{
		Type:       "checkout_started",
		SessionID:  sessionID,
		TotalCents: totalCents,
		TsUnix:     time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *CheckoutPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, sessionID string, totalCents int64)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev checkoutStartedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.SessionID != "" {
				handler(ctx, ev.SessionID, ev.TotalCents)
			}
		}
	}
}
