package potdrawconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/castaneai/potdraw"
)

const (
	RosterServiceName = "potdraw.v1.RosterService"
)

var (
	RosterServiceAddParticipantProcedure      = procedure(RosterServiceName, "AddParticipant")
	RosterServiceRemoveParticipantProcedure   = procedure(RosterServiceName, "RemoveParticipant")
	RosterServiceListParticipantsProcedure    = procedure(RosterServiceName, "ListParticipants")
	RosterServiceAddAssociationProcedure      = procedure(RosterServiceName, "AddAssociation")
	RosterServiceRemoveAssociationProcedure   = procedure(RosterServiceName, "RemoveAssociation")
	RosterServiceListAssociationsProcedure    = procedure(RosterServiceName, "ListAssociations")
	RosterServiceConfigurePotsProcedure       = procedure(RosterServiceName, "ConfigurePots")
	RosterServiceAssignParticipantProcedure   = procedure(RosterServiceName, "AssignParticipant")
	RosterServiceUnassignParticipantProcedure = procedure(RosterServiceName, "UnassignParticipant")
	RosterServiceGetPotsProcedure             = procedure(RosterServiceName, "GetPots")
	RosterServiceSnapshotProcedure            = procedure(RosterServiceName, "Snapshot")
)

type participantMessage struct {
	Name                   string   `json:"name"`
	Association            string   `json:"association"`
	ProhibitedParticipants nameList `json:"prohibited_participants,omitempty"`
	ProhibitedAssociations nameList `json:"prohibited_associations,omitempty"`
}

func newParticipantMessage(p potdraw.Participant) participantMessage {
	return participantMessage{
		Name:                   p.Name,
		Association:            p.Association,
		ProhibitedParticipants: p.ProhibitedParticipants,
		ProhibitedAssociations: p.ProhibitedAssociations,
	}
}

func (m participantMessage) participant() potdraw.Participant {
	return potdraw.Participant{
		Name:                   m.Name,
		Association:            m.Association,
		ProhibitedParticipants: m.ProhibitedParticipants,
		ProhibitedAssociations: m.ProhibitedAssociations,
	}
}

type addParticipantMessage struct {
	Participant participantMessage `json:"participant"`
}

type participantNameMessage struct {
	Name string `json:"name"`
}

type participantsMessage struct {
	Participants []participantMessage `json:"participants"`
}

type associationMessage struct {
	Association string `json:"association"`
}

type associationsMessage struct {
	Associations []string `json:"associations"`
}

type configurePotsMessage struct {
	PotCount int `json:"pot_count"`
}

type assignParticipantMessage struct {
	Name  string `json:"name"`
	PotID int    `json:"pot_id"`
}

type potsMessage struct {
	Pots potdraw.PotTable `json:"pots"`
}

type rosterMessage struct {
	Participants []participantMessage `json:"participants"`
	Pots         potdraw.PotTable     `json:"pots"`
}

type rosterService struct {
	roster potdraw.RosterManager
}

func NewRosterServiceHandler(roster potdraw.RosterManager, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &rosterService{roster: roster}
	mux := http.NewServeMux()
	mux.Handle(RosterServiceAddParticipantProcedure, newUnaryHandler(RosterServiceAddParticipantProcedure, s.addParticipant, opts...))
	mux.Handle(RosterServiceRemoveParticipantProcedure, newUnaryHandler(RosterServiceRemoveParticipantProcedure, s.removeParticipant, opts...))
	mux.Handle(RosterServiceListParticipantsProcedure, newUnaryHandler(RosterServiceListParticipantsProcedure, s.listParticipants, opts...))
	mux.Handle(RosterServiceAddAssociationProcedure, newUnaryHandler(RosterServiceAddAssociationProcedure, s.addAssociation, opts...))
	mux.Handle(RosterServiceRemoveAssociationProcedure, newUnaryHandler(RosterServiceRemoveAssociationProcedure, s.removeAssociation, opts...))
	mux.Handle(RosterServiceListAssociationsProcedure, newUnaryHandler(RosterServiceListAssociationsProcedure, s.listAssociations, opts...))
	mux.Handle(RosterServiceConfigurePotsProcedure, newUnaryHandler(RosterServiceConfigurePotsProcedure, s.configurePots, opts...))
	mux.Handle(RosterServiceAssignParticipantProcedure, newUnaryHandler(RosterServiceAssignParticipantProcedure, s.assignParticipant, opts...))
	mux.Handle(RosterServiceUnassignParticipantProcedure, newUnaryHandler(RosterServiceUnassignParticipantProcedure, s.unassignParticipant, opts...))
	mux.Handle(RosterServiceGetPotsProcedure, newUnaryHandler(RosterServiceGetPotsProcedure, s.getPots, opts...))
	mux.Handle(RosterServiceSnapshotProcedure, newUnaryHandler(RosterServiceSnapshotProcedure, s.snapshot, opts...))
	return "/" + RosterServiceName + "/", mux
}

func (s *rosterService) addParticipant(ctx context.Context, req *addParticipantMessage) (*emptyMessage, error) {
	if err := s.roster.AddParticipant(ctx, potdraw.AddParticipantRequest{Participant: req.Participant.participant()}); err != nil {
		return nil, err
	}
	return &emptyMessage{}, nil
}

func (s *rosterService) removeParticipant(ctx context.Context, req *participantNameMessage) (*emptyMessage, error) {
	if err := s.roster.RemoveParticipant(ctx, potdraw.RemoveParticipantRequest{Name: req.Name}); err != nil {
		return nil, err
	}
	return &emptyMessage{}, nil
}

func (s *rosterService) listParticipants(ctx context.Context, _ *emptyMessage) (*participantsMessage, error) {
	resp, err := s.roster.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	return &participantsMessage{Participants: participantMessages(resp.Participants)}, nil
}

func (s *rosterService) addAssociation(ctx context.Context, req *associationMessage) (*emptyMessage, error) {
	if err := s.roster.AddAssociation(ctx, potdraw.AddAssociationRequest{Association: req.Association}); err != nil {
		return nil, err
	}
	return &emptyMessage{}, nil
}

func (s *rosterService) removeAssociation(ctx context.Context, req *associationMessage) (*emptyMessage, error) {
	if err := s.roster.RemoveAssociation(ctx, potdraw.RemoveAssociationRequest{Association: req.Association}); err != nil {
		return nil, err
	}
	return &emptyMessage{}, nil
}

func (s *rosterService) listAssociations(ctx context.Context, _ *emptyMessage) (*associationsMessage, error) {
	resp, err := s.roster.ListAssociations(ctx)
	if err != nil {
		return nil, err
	}
	return &associationsMessage{Associations: resp.Associations}, nil
}

func (s *rosterService) configurePots(ctx context.Context, req *configurePotsMessage) (*emptyMessage, error) {
	if err := s.roster.ConfigurePots(ctx, potdraw.ConfigurePotsRequest{PotCount: req.PotCount}); err != nil {
		return nil, err
	}
	return &emptyMessage{}, nil
}

func (s *rosterService) assignParticipant(ctx context.Context, req *assignParticipantMessage) (*emptyMessage, error) {
	if err := s.roster.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: req.Name, PotID: req.PotID}); err != nil {
		return nil, err
	}
	return &emptyMessage{}, nil
}

func (s *rosterService) unassignParticipant(ctx context.Context, req *participantNameMessage) (*emptyMessage, error) {
	if err := s.roster.UnassignParticipant(ctx, potdraw.UnassignParticipantRequest{Name: req.Name}); err != nil {
		return nil, err
	}
	return &emptyMessage{}, nil
}

func (s *rosterService) getPots(ctx context.Context, _ *emptyMessage) (*potsMessage, error) {
	resp, err := s.roster.GetPots(ctx)
	if err != nil {
		return nil, err
	}
	return &potsMessage{Pots: resp.Pots}, nil
}

func (s *rosterService) snapshot(ctx context.Context, _ *emptyMessage) (*rosterMessage, error) {
	roster, err := s.roster.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	participants := make([]potdraw.Participant, 0, len(roster.Participants))
	for _, p := range roster.Participants {
		participants = append(participants, p)
	}
	return &rosterMessage{Participants: participantMessages(participants), Pots: roster.Pots}, nil
}

func participantMessages(participants []potdraw.Participant) []participantMessage {
	msgs := make([]participantMessage, 0, len(participants))
	for _, p := range participants {
		msgs = append(msgs, newParticipantMessage(p))
	}
	return msgs
}

type rosterClient struct {
	addParticipant      *structClient
	removeParticipant   *structClient
	listParticipants    *structClient
	addAssociation      *structClient
	removeAssociation   *structClient
	listAssociations    *structClient
	configurePots       *structClient
	assignParticipant   *structClient
	unassignParticipant *structClient
	getPots             *structClient
	snapshot            *structClient
}

// NewRosterClient returns a RosterManager backed by a remote RosterService.
func NewRosterClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) potdraw.RosterManager {
	return &rosterClient{
		addParticipant:      newStructClient(httpClient, baseURL, RosterServiceAddParticipantProcedure, opts...),
		removeParticipant:   newStructClient(httpClient, baseURL, RosterServiceRemoveParticipantProcedure, opts...),
		listParticipants:    newStructClient(httpClient, baseURL, RosterServiceListParticipantsProcedure, opts...),
		addAssociation:      newStructClient(httpClient, baseURL, RosterServiceAddAssociationProcedure, opts...),
		removeAssociation:   newStructClient(httpClient, baseURL, RosterServiceRemoveAssociationProcedure, opts...),
		listAssociations:    newStructClient(httpClient, baseURL, RosterServiceListAssociationsProcedure, opts...),
		configurePots:       newStructClient(httpClient, baseURL, RosterServiceConfigurePotsProcedure, opts...),
		assignParticipant:   newStructClient(httpClient, baseURL, RosterServiceAssignParticipantProcedure, opts...),
		unassignParticipant: newStructClient(httpClient, baseURL, RosterServiceUnassignParticipantProcedure, opts...),
		getPots:             newStructClient(httpClient, baseURL, RosterServiceGetPotsProcedure, opts...),
		snapshot:            newStructClient(httpClient, baseURL, RosterServiceSnapshotProcedure, opts...),
	}
}

func (c *rosterClient) AddParticipant(ctx context.Context, req potdraw.AddParticipantRequest) error {
	_, err := callUnary[emptyMessage](ctx, c.addParticipant, &addParticipantMessage{Participant: newParticipantMessage(req.Participant)})
	return err
}

func (c *rosterClient) RemoveParticipant(ctx context.Context, req potdraw.RemoveParticipantRequest) error {
	_, err := callUnary[emptyMessage](ctx, c.removeParticipant, &participantNameMessage{Name: req.Name})
	return err
}

func (c *rosterClient) ListParticipants(ctx context.Context) (*potdraw.ListParticipantsResponse, error) {
	resp, err := callUnary[participantsMessage](ctx, c.listParticipants, &emptyMessage{})
	if err != nil {
		return nil, err
	}
	participants := make([]potdraw.Participant, 0, len(resp.Participants))
	for _, m := range resp.Participants {
		participants = append(participants, m.participant())
	}
	return &potdraw.ListParticipantsResponse{Participants: participants}, nil
}

func (c *rosterClient) AddAssociation(ctx context.Context, req potdraw.AddAssociationRequest) error {
	_, err := callUnary[emptyMessage](ctx, c.addAssociation, &associationMessage{Association: req.Association})
	return err
}

func (c *rosterClient) RemoveAssociation(ctx context.Context, req potdraw.RemoveAssociationRequest) error {
	_, err := callUnary[emptyMessage](ctx, c.removeAssociation, &associationMessage{Association: req.Association})
	return err
}

func (c *rosterClient) ListAssociations(ctx context.Context) (*potdraw.ListAssociationsResponse, error) {
	resp, err := callUnary[associationsMessage](ctx, c.listAssociations, &emptyMessage{})
	if err != nil {
		return nil, err
	}
	return &potdraw.ListAssociationsResponse{Associations: resp.Associations}, nil
}

func (c *rosterClient) ConfigurePots(ctx context.Context, req potdraw.ConfigurePotsRequest) error {
	_, err := callUnary[emptyMessage](ctx, c.configurePots, &configurePotsMessage{PotCount: req.PotCount})
	return err
}

func (c *rosterClient) AssignParticipant(ctx context.Context, req potdraw.AssignParticipantRequest) error {
	_, err := callUnary[emptyMessage](ctx, c.assignParticipant, &assignParticipantMessage{Name: req.Name, PotID: req.PotID})
	return err
}

func (c *rosterClient) UnassignParticipant(ctx context.Context, req potdraw.UnassignParticipantRequest) error {
	_, err := callUnary[emptyMessage](ctx, c.unassignParticipant, &participantNameMessage{Name: req.Name})
	return err
}

func (c *rosterClient) GetPots(ctx context.Context) (*potdraw.GetPotsResponse, error) {
	resp, err := callUnary[potsMessage](ctx, c.getPots, &emptyMessage{})
	if err != nil {
		return nil, err
	}
	return &potdraw.GetPotsResponse{Pots: resp.Pots}, nil
}

func (c *rosterClient) Snapshot(ctx context.Context) (*potdraw.Roster, error) {
	resp, err := callUnary[rosterMessage](ctx, c.snapshot, &emptyMessage{})
	if err != nil {
		return nil, err
	}
	participants := make(map[string]potdraw.Participant, len(resp.Participants))
	for _, m := range resp.Participants {
		participants[m.Name] = m.participant()
	}
	return &potdraw.Roster{Participants: participants, Pots: resp.Pots}, nil
}
