package potdrawredis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castaneai/potdraw"
)

func TestRosterParticipants(t *testing.T) {
	ctx := t.Context()
	client, _ := newRedisClientWithMiniRedis(t)
	m := NewRosterManager(testingKeyPrefix, client)

	ajax := potdraw.Participant{Name: "Ajax", Association: "NED", ProhibitedParticipants: []string{"PSV"}}
	require.NoError(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: ajax}))
	require.NoError(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: potdraw.Participant{Name: "Benfica", Association: "POR"}}))

	// names are unique
	err := m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: potdraw.Participant{Name: "Ajax", Association: "ENG"}})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusAlreadyExists))

	err = m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: potdraw.Participant{Name: "Celtic"}})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusInvalidRequest))

	res, err := m.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, res.Participants, 2)
	require.Equal(t, ajax, res.Participants[0])
	require.Equal(t, "Benfica", res.Participants[1].Name)

	require.NoError(t, m.RemoveParticipant(ctx, potdraw.RemoveParticipantRequest{Name: "Benfica"}))
	err = m.RemoveParticipant(ctx, potdraw.RemoveParticipantRequest{Name: "Benfica"})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusNotFound))

	res, err = m.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, res.Participants, 1)
}

func TestRosterAssociations(t *testing.T) {
	ctx := t.Context()
	client, _ := newRedisClientWithMiniRedis(t)
	m := NewRosterManager(testingKeyPrefix, client)

	// an empty whitelist accepts anything
	require.NoError(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: potdraw.Participant{Name: "Ajax", Association: "NED"}}))

	require.NoError(t, m.AddAssociation(ctx, potdraw.AddAssociationRequest{Association: "POR"}))
	require.NoError(t, m.AddAssociation(ctx, potdraw.AddAssociationRequest{Association: "ENG"}))
	res, err := m.ListAssociations(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"ENG", "POR"}, res.Associations)

	require.NoError(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: potdraw.Participant{Name: "Benfica", Association: "POR"}}))
	err = m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: potdraw.Participant{Name: "PSV", Association: "NED"}})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusInvalidRequest))

	require.NoError(t, m.RemoveAssociation(ctx, potdraw.RemoveAssociationRequest{Association: "ENG"}))
	err = m.RemoveAssociation(ctx, potdraw.RemoveAssociationRequest{Association: "ENG"})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusNotFound))
	err = m.AddAssociation(ctx, potdraw.AddAssociationRequest{})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusInvalidRequest))
}

func TestRosterPots(t *testing.T) {
	ctx := t.Context()
	client, _ := newRedisClientWithMiniRedis(t)
	m := NewRosterManager(testingKeyPrefix, client, WithDefaultPotCount(3))

	// unconfigured pots fall back to the default count
	pots, err := m.GetPots(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, pots.Pots.IDs())

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: potdraw.Participant{Name: name, Association: "x-" + name}}))
	}
	require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "a", PotID: 1}))
	require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "b", PotID: 1}))
	require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "c", PotID: 2}))
	// assigning again is a no-op
	require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "a", PotID: 1}))
	// moving keeps pots a partition
	require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "a", PotID: 2}))

	pots, err = m.GetPots(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, pots.Pots[1])
	require.Equal(t, []string{"c", "a"}, pots.Pots[2])
	require.Empty(t, pots.Pots[3])

	err = m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "a", PotID: 4})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusInvalidRequest))
	err = m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "nobody", PotID: 1})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusNotFound))

	require.NoError(t, m.UnassignParticipant(ctx, potdraw.UnassignParticipantRequest{Name: "c"}))
	err = m.UnassignParticipant(ctx, potdraw.UnassignParticipantRequest{Name: "c"})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusNotFound))

	// removing a participant drops its pot membership
	require.NoError(t, m.RemoveParticipant(ctx, potdraw.RemoveParticipantRequest{Name: "b"}))
	pots, err = m.GetPots(ctx)
	require.NoError(t, err)
	require.Empty(t, pots.Pots[1])
	require.Equal(t, []string{"a"}, pots.Pots[2])

	// reconfiguring empties every pot but keeps the registry
	require.NoError(t, m.ConfigurePots(ctx, potdraw.ConfigurePotsRequest{PotCount: 2}))
	pots, err = m.GetPots(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, pots.Pots.IDs())
	require.Equal(t, 0, pots.Pots.Len())
	participants, err := m.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, participants.Participants, 2)

	err = m.ConfigurePots(ctx, potdraw.ConfigurePotsRequest{PotCount: 0})
	require.True(t, potdraw.ErrorHasStatus(err, potdraw.ErrorStatusInvalidRequest))

	// a reassigned participant can be put back after reconfiguring
	require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: "a", PotID: 2}))
	pots, err = m.GetPots(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, pots.Pots[2])
}

func TestRosterSnapshot(t *testing.T) {
	ctx := t.Context()
	client, _ := newRedisClientWithMiniRedis(t)
	m := NewRosterManager(testingKeyPrefix, client)
	seedRoster(t, m, 4, 2)

	roster, err := m.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, roster.Participants, 8)
	require.Equal(t, []string{"p3-1", "p3-2"}, roster.Pots[3])
	require.NoError(t, roster.Validate(potdraw.DrawConfig{QuotaPerPot: 1}))
}
