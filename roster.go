package potdraw

import (
	"context"
)

type RosterManager interface {
	// AddParticipant registers a new participant.
	// If the name is taken, it returns Error with code: ErrorStatusAlreadyExists.
	// When an association whitelist exists, the association must be on it.
	AddParticipant(ctx context.Context, req AddParticipantRequest) error

	// RemoveParticipant unregisters a participant and takes it out of its pot.
	RemoveParticipant(ctx context.Context, req RemoveParticipantRequest) error

	// ListParticipants returns all registered participants sorted by name.
	ListParticipants(ctx context.Context) (*ListParticipantsResponse, error)

	// AddAssociation adds an association to the whitelist.
	AddAssociation(ctx context.Context, req AddAssociationRequest) error

	RemoveAssociation(ctx context.Context, req RemoveAssociationRequest) error

	// ListAssociations returns the whitelist sorted. An empty whitelist accepts any association.
	ListAssociations(ctx context.Context) (*ListAssociationsResponse, error)

	// ConfigurePots replaces all pots with empty pots 1..PotCount.
	ConfigurePots(ctx context.Context, req ConfigurePotsRequest) error

	// AssignParticipant appends a participant to a pot, moving it out of its previous pot.
	AssignParticipant(ctx context.Context, req AssignParticipantRequest) error

	// UnassignParticipant takes a participant out of its pot.
	UnassignParticipant(ctx context.Context, req UnassignParticipantRequest) error

	// GetPots returns the pot membership table.
	GetPots(ctx context.Context) (*GetPotsResponse, error)

	// Snapshot returns the roster as consumed by a draw: registry plus pots.
	Snapshot(ctx context.Context) (*Roster, error)
}

type AddParticipantRequest struct {
	Participant Participant
}

type RemoveParticipantRequest struct {
	Name string
}

type ListParticipantsResponse struct {
	Participants []Participant
}

type AddAssociationRequest struct {
	Association string
}

type RemoveAssociationRequest struct {
	Association string
}

type ListAssociationsResponse struct {
	Associations []string
}

type ConfigurePotsRequest struct {
	PotCount int
}

type AssignParticipantRequest struct {
	Name  string
	PotID int
}

type UnassignParticipantRequest struct {
	Name string
}

type GetPotsResponse struct {
	Pots PotTable
}
