package potdrawredis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/castaneai/potdraw"
)

const (
	defaultPotCount = 4
)

// result codes returned by the Lua scripts
const (
	scriptUnchanged          = 0
	scriptNotFound           = -1
	scriptInvalid            = -2
	scriptAlreadyExists      = -3
	scriptUnknownAssociation = -4
)

var (
	addParticipantScript = rueidis.NewLuaScript(`
local participants_key = KEYS[1]
local associations_key = KEYS[2]
local name = ARGV[1]
local data = ARGV[2]
local association = ARGV[3]
if redis.call('SCARD', associations_key) > 0 and redis.call('SISMEMBER', associations_key, association) == 0 then
	return -4
end
if redis.call('HSETNX', participants_key, name, data) == 0 then
	return -3
end
return 1
`)

	removeParticipantScript = rueidis.NewLuaScript(`
local participants_key = KEYS[1]
local participant_pot_key = KEYS[2]
local name = ARGV[1]
local pot_key_prefix = ARGV[2]
if redis.call('HDEL', participants_key, name) == 0 then
	return -1
end
local old = redis.call('HGET', participant_pot_key, name)
if old then
	redis.call('LREM', pot_key_prefix .. old, 0, name)
	redis.call('HDEL', participant_pot_key, name)
end
return 1
`)

	assignParticipantScript = rueidis.NewLuaScript(`
local participants_key = KEYS[1]
local participant_pot_key = KEYS[2]
local pot_count_key = KEYS[3]
local name = ARGV[1]
local pot_id = ARGV[2]
local pot_key_prefix = ARGV[3]
local default_pot_count = ARGV[4]
if redis.call('HEXISTS', participants_key, name) == 0 then
	return -1
end
local pot_count = tonumber(redis.call('GET', pot_count_key) or default_pot_count)
local id = tonumber(pot_id)
if id < 1 or id > pot_count then
	return -2
end
local old = redis.call('HGET', participant_pot_key, name)
if old == pot_id then
	return 0
end
if old then
	redis.call('LREM', pot_key_prefix .. old, 0, name)
end
redis.call('RPUSH', pot_key_prefix .. pot_id, name)
redis.call('HSET', participant_pot_key, name, pot_id)
return 1
`)

	unassignParticipantScript = rueidis.NewLuaScript(`
local participant_pot_key = KEYS[1]
local name = ARGV[1]
local pot_key_prefix = ARGV[2]
local old = redis.call('HGET', participant_pot_key, name)
if not old then
	return 0
end
redis.call('LREM', pot_key_prefix .. old, 0, name)
redis.call('HDEL', participant_pot_key, name)
return 1
`)

	configurePotsScript = rueidis.NewLuaScript(`
local pot_count_key = KEYS[1]
local participant_pot_key = KEYS[2]
local pot_count = ARGV[1]
local pot_key_prefix = ARGV[2]
local default_pot_count = ARGV[3]
local old_count = tonumber(redis.call('GET', pot_count_key) or default_pot_count)
for i = 1, old_count do
	redis.call('DEL', pot_key_prefix .. i)
end
redis.call('DEL', participant_pot_key)
redis.call('SET', pot_count_key, pot_count)
return 1
`)
)

type RosterOption func(m *redisRosterManager)

// WithDefaultPotCount sets the pot count used before pots are configured.
func WithDefaultPotCount(n int) RosterOption {
	return func(m *redisRosterManager) {
		if n > 0 {
			m.defaultPotCount = n
		}
	}
}

type redisRosterManager struct {
	keyPrefix       string
	client          rueidis.Client
	defaultPotCount int
}

func NewRosterManager(keyPrefix string, client rueidis.Client, opts ...RosterOption) potdraw.RosterManager {
	m := &redisRosterManager{keyPrefix: keyPrefix, client: client, defaultPotCount: defaultPotCount}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *redisRosterManager) AddParticipant(ctx context.Context, req potdraw.AddParticipantRequest) error {
	p := req.Participant
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := encodeParticipant(p)
	if err != nil {
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, err)
	}
	code, err := addParticipantScript.Exec(ctx, m.client, []string{
		redisKeyParticipants(m.keyPrefix),
		redisKeyAssociations(m.keyPrefix),
	}, []string{p.Name, data, p.Association}).AsInt64()
	if err != nil {
		return potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to exec add participant script: %w", err))
	}
	switch code {
	case scriptAlreadyExists:
		return potdraw.NewError(potdraw.ErrorStatusAlreadyExists, fmt.Errorf("participant '%s' already exists", p.Name))
	case scriptUnknownAssociation:
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, fmt.Errorf("association '%s' is not recognized", p.Association))
	}
	return nil
}

func (m *redisRosterManager) RemoveParticipant(ctx context.Context, req potdraw.RemoveParticipantRequest) error {
	if req.Name == "" {
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, errors.New("missing participant name"))
	}
	code, err := removeParticipantScript.Exec(ctx, m.client, []string{
		redisKeyParticipants(m.keyPrefix),
		redisKeyParticipantPot(m.keyPrefix),
	}, []string{req.Name, redisKeyPotPrefix(m.keyPrefix)}).AsInt64()
	if err != nil {
		return potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to exec remove participant script: %w", err))
	}
	if code == scriptNotFound {
		return potdraw.NewError(potdraw.ErrorStatusNotFound, fmt.Errorf("participant '%s' not found", req.Name))
	}
	return nil
}

func (m *redisRosterManager) ListParticipants(ctx context.Context) (*potdraw.ListParticipantsResponse, error) {
	participants, err := m.getParticipants(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]potdraw.Participant, 0, len(participants))
	for _, p := range participants {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b potdraw.Participant) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return &potdraw.ListParticipantsResponse{Participants: list}, nil
}

func (m *redisRosterManager) AddAssociation(ctx context.Context, req potdraw.AddAssociationRequest) error {
	if req.Association == "" {
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, errors.New("missing association"))
	}
	cmd := m.client.B().Sadd().Key(redisKeyAssociations(m.keyPrefix)).Member(req.Association).Build()
	if err := m.client.Do(ctx, cmd).Error(); err != nil {
		return potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to add association: %w", err))
	}
	return nil
}

func (m *redisRosterManager) RemoveAssociation(ctx context.Context, req potdraw.RemoveAssociationRequest) error {
	if req.Association == "" {
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, errors.New("missing association"))
	}
	cmd := m.client.B().Srem().Key(redisKeyAssociations(m.keyPrefix)).Member(req.Association).Build()
	removed, err := m.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to remove association: %w", err))
	}
	if removed == 0 {
		return potdraw.NewError(potdraw.ErrorStatusNotFound, fmt.Errorf("association '%s' not found", req.Association))
	}
	return nil
}

func (m *redisRosterManager) ListAssociations(ctx context.Context) (*potdraw.ListAssociationsResponse, error) {
	cmd := m.client.B().Smembers().Key(redisKeyAssociations(m.keyPrefix)).Build()
	associations, err := m.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to list associations: %w", err))
	}
	slices.Sort(associations)
	return &potdraw.ListAssociationsResponse{Associations: associations}, nil
}

func (m *redisRosterManager) ConfigurePots(ctx context.Context, req potdraw.ConfigurePotsRequest) error {
	if _, err := potdraw.ConfigurePots(req.PotCount); err != nil {
		return err
	}
	res := configurePotsScript.Exec(ctx, m.client, []string{
		redisKeyPotCount(m.keyPrefix),
		redisKeyParticipantPot(m.keyPrefix),
	}, []string{
		strconv.Itoa(req.PotCount),
		redisKeyPotPrefix(m.keyPrefix),
		strconv.Itoa(m.defaultPotCount),
	})
	if err := res.Error(); err != nil {
		return potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to exec configure pots script: %w", err))
	}
	return nil
}

func (m *redisRosterManager) AssignParticipant(ctx context.Context, req potdraw.AssignParticipantRequest) error {
	if req.Name == "" {
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, errors.New("missing participant name"))
	}
	if req.PotID < 1 {
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, fmt.Errorf("invalid pot id: %d", req.PotID))
	}
	code, err := assignParticipantScript.Exec(ctx, m.client, []string{
		redisKeyParticipants(m.keyPrefix),
		redisKeyParticipantPot(m.keyPrefix),
		redisKeyPotCount(m.keyPrefix),
	}, []string{
		req.Name,
		strconv.Itoa(req.PotID),
		redisKeyPotPrefix(m.keyPrefix),
		strconv.Itoa(m.defaultPotCount),
	}).AsInt64()
	if err != nil {
		return potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to exec assign participant script: %w", err))
	}
	switch code {
	case scriptNotFound:
		return potdraw.NewError(potdraw.ErrorStatusNotFound, fmt.Errorf("participant '%s' not found", req.Name))
	case scriptInvalid:
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, fmt.Errorf("pot %d does not exist", req.PotID))
	}
	return nil
}

func (m *redisRosterManager) UnassignParticipant(ctx context.Context, req potdraw.UnassignParticipantRequest) error {
	if req.Name == "" {
		return potdraw.NewError(potdraw.ErrorStatusInvalidRequest, errors.New("missing participant name"))
	}
	code, err := unassignParticipantScript.Exec(ctx, m.client, []string{
		redisKeyParticipantPot(m.keyPrefix),
	}, []string{req.Name, redisKeyPotPrefix(m.keyPrefix)}).AsInt64()
	if err != nil {
		return potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to exec unassign participant script: %w", err))
	}
	if code == scriptUnchanged {
		return potdraw.NewError(potdraw.ErrorStatusNotFound, fmt.Errorf("participant '%s' is not in any pot", req.Name))
	}
	return nil
}

func (m *redisRosterManager) GetPots(ctx context.Context) (*potdraw.GetPotsResponse, error) {
	pots, err := m.getPots(ctx)
	if err != nil {
		return nil, err
	}
	return &potdraw.GetPotsResponse{Pots: pots}, nil
}

func (m *redisRosterManager) Snapshot(ctx context.Context) (*potdraw.Roster, error) {
	participants, err := m.getParticipants(ctx)
	if err != nil {
		return nil, err
	}
	pots, err := m.getPots(ctx)
	if err != nil {
		return nil, err
	}
	return &potdraw.Roster{Participants: participants, Pots: pots}, nil
}

func (m *redisRosterManager) getParticipants(ctx context.Context) (map[string]potdraw.Participant, error) {
	cmd := m.client.B().Hgetall().Key(redisKeyParticipants(m.keyPrefix)).Build()
	entries, err := m.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to get participants: %w", err))
	}
	participants := make(map[string]potdraw.Participant, len(entries))
	for name, data := range entries {
		p, err := decodeParticipant(data)
		if err != nil {
			return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("participant '%s': %w", name, err))
		}
		participants[name] = p
	}
	return participants, nil
}

func (m *redisRosterManager) getPots(ctx context.Context) (potdraw.PotTable, error) {
	potCount, err := m.getPotCount(ctx)
	if err != nil {
		return nil, err
	}
	pots, err := potdraw.ConfigurePots(potCount)
	if err != nil {
		return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("stored pot count is broken: %w", err))
	}
	cmds := make([]rueidis.Completed, 0, potCount)
	for id := 1; id <= potCount; id++ {
		cmds = append(cmds, m.client.B().Lrange().Key(redisKeyPot(m.keyPrefix, id)).Start(0).Stop(-1).Build())
	}
	for i, res := range m.client.DoMulti(ctx, cmds...) {
		members, err := res.AsStrSlice()
		if err != nil {
			return nil, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to get members of pot %d: %w", i+1, err))
		}
		pots[i+1] = members
	}
	return pots, nil
}

func (m *redisRosterManager) getPotCount(ctx context.Context) (int, error) {
	cmd := m.client.B().Get().Key(redisKeyPotCount(m.keyPrefix)).Build()
	potCount, err := m.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return m.defaultPotCount, nil
		}
		return 0, potdraw.NewError(potdraw.ErrorStatusUnknown, fmt.Errorf("failed to get pot count: %w", err))
	}
	return int(potCount), nil
}
