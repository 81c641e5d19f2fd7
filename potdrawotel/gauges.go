package potdrawotel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/castaneai/potdraw"
)

const (
	potIDKey = attribute.Key("pot_id")
)

type RosterStats interface {
	GetParticipantCount(ctx context.Context) (int, error)
	GetPotSizes(ctx context.Context) ([]potdraw.PotSize, error)
}

// RegisterRosterGauges observes the registry size and every pot size on each collection.
// Unregister the returned registration to stop observing.
func RegisterRosterGauges(stats RosterStats) (metric.Registration, error) {
	meter := otel.GetMeterProvider().Meter(scopeName)
	participants, err := meter.Int64ObservableGauge("potdraw.roster.participants")
	if err != nil {
		return nil, err
	}
	potSize, err := meter.Int64ObservableGauge("potdraw.pot.size")
	if err != nil {
		return nil, err
	}
	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		count, err := stats.GetParticipantCount(ctx)
		if err != nil {
			return fmt.Errorf("failed to get participant count: %w", err)
		}
		o.ObserveInt64(participants, int64(count))
		sizes, err := stats.GetPotSizes(ctx)
		if err != nil {
			return fmt.Errorf("failed to get pot sizes: %w", err)
		}
		for _, s := range sizes {
			o.ObserveInt64(potSize, int64(s.Size), metric.WithAttributes(potIDKey.Int(s.PotID)))
		}
		return nil
	}, participants, potSize)
}
