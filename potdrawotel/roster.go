package potdrawotel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/castaneai/potdraw"
)

const (
	opKey = attribute.Key("op")
)

var (
	opAddParticipant      = opKey.String("add_participant")
	opRemoveParticipant   = opKey.String("remove_participant")
	opAddAssociation      = opKey.String("add_association")
	opRemoveAssociation   = opKey.String("remove_association")
	opConfigurePots       = opKey.String("configure_pots")
	opAssignParticipant   = opKey.String("assign_participant")
	opUnassignParticipant = opKey.String("unassign_participant")
)

// rosterManager counts mutations. Reads are passed through untouched.
type rosterManager struct {
	inner         potdraw.RosterManager
	mutationCount metric.Int64Counter
}

func NewRosterManager(inner potdraw.RosterManager) (potdraw.RosterManager, error) {
	meter := otel.GetMeterProvider().Meter(scopeName)
	mutationCount, err := meter.Int64Counter("potdraw.roster.mutation.count_total")
	if err != nil {
		return nil, err
	}
	return &rosterManager{inner: inner, mutationCount: mutationCount}, nil
}

func (m *rosterManager) record(ctx context.Context, op attribute.KeyValue, err error) error {
	statusAttr := statusOK
	if err != nil {
		statusAttr = errorStatusAttr(err)
	}
	m.mutationCount.Add(ctx, 1, metric.WithAttributes(op, statusAttr))
	return err
}

func (m *rosterManager) AddParticipant(ctx context.Context, req potdraw.AddParticipantRequest) error {
	return m.record(ctx, opAddParticipant, m.inner.AddParticipant(ctx, req))
}

func (m *rosterManager) RemoveParticipant(ctx context.Context, req potdraw.RemoveParticipantRequest) error {
	return m.record(ctx, opRemoveParticipant, m.inner.RemoveParticipant(ctx, req))
}

func (m *rosterManager) ListParticipants(ctx context.Context) (*potdraw.ListParticipantsResponse, error) {
	return m.inner.ListParticipants(ctx)
}

func (m *rosterManager) AddAssociation(ctx context.Context, req potdraw.AddAssociationRequest) error {
	return m.record(ctx, opAddAssociation, m.inner.AddAssociation(ctx, req))
}

func (m *rosterManager) RemoveAssociation(ctx context.Context, req potdraw.RemoveAssociationRequest) error {
	return m.record(ctx, opRemoveAssociation, m.inner.RemoveAssociation(ctx, req))
}

func (m *rosterManager) ListAssociations(ctx context.Context) (*potdraw.ListAssociationsResponse, error) {
	return m.inner.ListAssociations(ctx)
}

func (m *rosterManager) ConfigurePots(ctx context.Context, req potdraw.ConfigurePotsRequest) error {
	return m.record(ctx, opConfigurePots, m.inner.ConfigurePots(ctx, req))
}

func (m *rosterManager) AssignParticipant(ctx context.Context, req potdraw.AssignParticipantRequest) error {
	return m.record(ctx, opAssignParticipant, m.inner.AssignParticipant(ctx, req))
}

func (m *rosterManager) UnassignParticipant(ctx context.Context, req potdraw.UnassignParticipantRequest) error {
	return m.record(ctx, opUnassignParticipant, m.inner.UnassignParticipant(ctx, req))
}

func (m *rosterManager) GetPots(ctx context.Context) (*potdraw.GetPotsResponse, error) {
	return m.inner.GetPots(ctx)
}

func (m *rosterManager) Snapshot(ctx context.Context) (*potdraw.Roster, error) {
	return m.inner.Snapshot(ctx)
}
