package potdrawredis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/rueidis"
)

const (
	defaultWatchChannelBufferSize = 1024
)

// subscribe returns once the subscription is confirmed. Messages that find
// the buffer full are dropped.
func subscribe(ctx context.Context, c rueidis.DedicatedClient, pubsubChannelName string) (<-chan string, <-chan error, error) {
	subscribed := make(chan struct{})
	var once sync.Once
	received := make(chan string, defaultWatchChannelBufferSize)
	// > wait channel is guaranteed to be close when the hooks will not be called anymore,
	// > and produce at most one error describing the reason.
	// https://pkg.go.dev/github.com/redis/rueidis#readme-alternative-pubsub-hooks
	wait := c.SetPubSubHooks(rueidis.PubSubHooks{
		OnMessage: func(msg rueidis.PubSubMessage) {
			if msg.Channel != pubsubChannelName {
				return
			}
			select {
			case received <- msg.Message:
			default:
				slog.Error(fmt.Sprintf("message dropped on full channel '%s': %s", pubsubChannelName, msg.Message))
			}
		},
		OnSubscription: func(_ rueidis.PubSubSubscription) {
			once.Do(func() { close(subscribed) })
		},
	})
	cmd := c.B().Subscribe().Channel(pubsubChannelName).Build()
	if err := c.Do(ctx, cmd).Error(); err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to channel '%s': %w", pubsubChannelName, err)
	}

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case err := <-wait:
		return nil, nil, fmt.Errorf("subscription has been closed '%s': %w", pubsubChannelName, err)
	case <-subscribed:
	}
	return received, wait, nil
}
