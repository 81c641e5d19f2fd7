package potdrawredis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/rueidis"

	"github.com/castaneai/potdraw"
)

type redisDrawWatcher struct {
	keyPrefix string
	client    rueidis.Client
}

func NewDrawWatcher(keyPrefix string, client rueidis.Client) potdraw.DrawWatcher {
	return &redisDrawWatcher{keyPrefix: keyPrefix, client: client}
}

// WatchDraws holds a dedicated connection until ctx is done.
func (w *redisDrawWatcher) WatchDraws(ctx context.Context) (<-chan string, error) {
	dc, release := w.client.Dedicate()
	received, wait, err := subscribe(ctx, dc, redisPubSubChannelDrawCompleted(w.keyPrefix))
	if err != nil {
		release()
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, err)
	}
	drawIDs := make(chan string, defaultWatchChannelBufferSize)
	go func() {
		defer close(drawIDs)
		defer release()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-wait:
				if err != nil {
					err := fmt.Errorf("draw watch subscription closed: %w", err)
					slog.Error(err.Error(), "error", err)
				}
				return
			case drawID := <-received:
				select {
				case drawIDs <- drawID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return drawIDs, nil
}
