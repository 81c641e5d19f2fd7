package potdrawredis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/castaneai/potdraw"
)

// Metrics reads roster sizes without decoding participants.
type Metrics struct {
	keyPrefix       string
	client          rueidis.Client
	defaultPotCount int
}

// NewMetrics takes the same options as the RosterManager it observes.
func NewMetrics(keyPrefix string, client rueidis.Client, opts ...RosterOption) *Metrics {
	rm := &redisRosterManager{defaultPotCount: defaultPotCount}
	for _, opt := range opts {
		opt(rm)
	}
	return &Metrics{keyPrefix: keyPrefix, client: client, defaultPotCount: rm.defaultPotCount}
}

func (m *Metrics) GetParticipantCount(ctx context.Context) (int, error) {
	cmd := m.client.B().Hlen().Key(redisKeyParticipants(m.keyPrefix)).Build()
	count, err := m.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to hlen participants: %w", err)
	}
	return int(count), nil
}

// GetPotSizes returns the member count of every pot in ascending pot order.
func (m *Metrics) GetPotSizes(ctx context.Context) ([]potdraw.PotSize, error) {
	cmd := m.client.B().Get().Key(redisKeyPotCount(m.keyPrefix)).Build()
	potCount, err := m.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			return nil, fmt.Errorf("failed to get pot count: %w", err)
		}
		potCount = int64(m.defaultPotCount)
	}
	cmds := make([]rueidis.Completed, 0, potCount)
	for id := 1; id <= int(potCount); id++ {
		cmds = append(cmds, m.client.B().Llen().Key(redisKeyPot(m.keyPrefix, id)).Build())
	}
	sizes := make([]potdraw.PotSize, 0, potCount)
	for i, res := range m.client.DoMulti(ctx, cmds...) {
		size, err := res.AsInt64()
		if err != nil {
			return nil, fmt.Errorf("failed to llen pot %d: %w", i+1, err)
		}
		sizes = append(sizes, potdraw.PotSize{PotID: i + 1, Size: int(size)})
	}
	return sizes, nil
}
