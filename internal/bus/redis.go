package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Srinivas-559/chat-app/internal/relay"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "chat:deliver:"

// Deliverer hands an event to a locally held session. Satisfied by the
// relay engine's DeliverLocal.
type Deliverer interface {
	DeliverLocal(ctx context.Context, identity string, ev relay.Event) bool
}

// Redis bridges targeted events between instances over pub/sub. An engine
// publishes here only after the local registry came up empty, and a
// subscriber forwards only to sessions it actually holds, so an event is
// delivered at most once.
type Redis struct {
	rdb   *redis.Client
	local Deliverer
}

func NewRedis(rdb *redis.Client, local Deliverer) *Redis {
	return &Redis{rdb: rdb, local: local}
}

func (b *Redis) Publish(ctx context.Context, identity string, ev relay.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.rdb.Publish(ctx, channelPrefix+identity, payload).Err()
}

// Run subscribes to the delivery channel pattern and forwards inbound
// events to local sessions until ctx is canceled.
func (b *Redis) Run(ctx context.Context) {
	pubsub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			identity := strings.TrimPrefix(msg.Channel, channelPrefix)

			var ev relay.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("bus: bad payload", "channel", msg.Channel, "err", err)
				continue
			}
			b.local.DeliverLocal(ctx, identity, ev)
		}
	}
}
