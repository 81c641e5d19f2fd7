package potdraw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRosterValidate(t *testing.T) {
	tests := []struct {
		name   string
		roster Roster
		conf   DrawConfig
		status ErrorStatus
	}{
		{
			name:   "zero quota",
			roster: gridRoster(2, 2),
			conf:   DrawConfig{QuotaPerPot: 0},
			status: ErrorStatusInvalidRequest,
		},
		{
			name:   "negative association cap",
			roster: gridRoster(2, 2),
			conf:   DrawConfig{QuotaPerPot: 1, AssociationCap: -1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name:   "no pots",
			roster: Roster{Participants: map[string]Participant{}, Pots: PotTable{}},
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name:   "no participants",
			roster: Roster{Participants: map[string]Participant{}, Pots: PotTable{1: {}, 2: {}}},
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name: "empty pot",
			roster: func() Roster {
				r := gridRoster(2, 2)
				r.Pots[3] = []string{}
				return r
			}(),
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name: "unregistered member",
			roster: func() Roster {
				r := gridRoster(2, 2)
				delete(r.Participants, "p2-2")
				return r
			}(),
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusNotFound,
		},
		{
			name: "member in two pots",
			roster: func() Roster {
				r := gridRoster(2, 2)
				r.Pots[2][1] = "p1-1"
				return r
			}(),
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name: "pot ids with a gap",
			roster: func() Roster {
				r := gridRoster(2, 2)
				r.Pots[3] = r.Pots[2]
				delete(r.Pots, 2)
				return r
			}(),
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name:   "quota exceeds pot size",
			roster: gridRoster(3, 2),
			conf:   DrawConfig{QuotaPerPot: 3},
			status: ErrorStatusInvalidRequest,
		},
		{
			name:   "quota exceeds own pot size",
			roster: gridRoster(2, 2),
			conf:   DrawConfig{QuotaPerPot: 2, AllowSameSourcePot: true},
			status: ErrorStatusInvalidRequest,
		},
		{
			name: "unbalanced pots",
			roster: func() Roster {
				r := gridRoster(2, 2)
				r.Participants["extra"] = Participant{Name: "extra", Association: "e"}
				r.Pots[2] = append(r.Pots[2], "extra")
				return r
			}(),
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name:   "odd pot drawing from itself",
			roster: gridRoster(1, 3),
			conf:   DrawConfig{QuotaPerPot: 1, AllowSameSourcePot: true},
			status: ErrorStatusInvalidRequest,
		},
		{
			name:   "single pot without same-pot pairing",
			roster: gridRoster(1, 4),
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
		{
			name: "participant prohibits itself",
			roster: func() Roster {
				r := gridRoster(2, 2)
				p := r.Participants["p1-1"]
				p.ProhibitedParticipants = []string{"p1-1"}
				r.Participants["p1-1"] = p
				return r
			}(),
			conf:   DrawConfig{QuotaPerPot: 1},
			status: ErrorStatusInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.roster.Validate(tt.conf)
			require.Error(t, err)
			require.True(t, ErrorHasStatus(err, tt.status), "unexpected error: %v", err)
		})
	}
}

func TestRosterValidateAccepts(t *testing.T) {
	require.NoError(t, gridRoster(4, 4).Validate(DrawConfig{QuotaPerPot: 1}))
	require.NoError(t, gridRoster(4, 4).Validate(DrawConfig{QuotaPerPot: 3, AllowSameSourcePot: true}))
	require.NoError(t, gridRoster(1, 4).Validate(DrawConfig{QuotaPerPot: 1, AllowSameSourcePot: true}))
	// exclusions are left to the attempts
	r := gridRoster(2, 1)
	p := r.Participants["p1-1"]
	p.ProhibitedParticipants = []string{"p2-1"}
	r.Participants["p1-1"] = p
	require.NoError(t, r.Validate(DrawConfig{QuotaPerPot: 1}))
}

func TestConfigurePots(t *testing.T) {
	pots, err := ConfigurePots(3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, pots.IDs())
	for _, id := range pots.IDs() {
		require.Empty(t, pots[id])
	}
	require.Zero(t, pots.PotOf("anyone"))

	_, err = ConfigurePots(0)
	require.True(t, ErrorHasStatus(err, ErrorStatusInvalidRequest))
}

func TestPotTable(t *testing.T) {
	pots := PotTable{1: {"a", "b"}, 2: {"c"}}
	require.Equal(t, 1, pots.PotOf("b"))
	require.Equal(t, 2, pots.PotOf("c"))
	require.Equal(t, 3, pots.Len())
}

func TestParticipantValidate(t *testing.T) {
	require.NoError(t, Participant{Name: "a", Association: "x"}.Validate())
	require.True(t, ErrorHasStatus(Participant{Association: "x"}.Validate(), ErrorStatusInvalidRequest))
	require.True(t, ErrorHasStatus(Participant{Name: "a"}.Validate(), ErrorStatusInvalidRequest))
}

func TestParseNameList(t *testing.T) {
	require.Equal(t, []string{"Ajax", "Benfica", "Celtic"}, ParseNameList(" Ajax, Benfica,,Celtic, Ajax "))
	require.Empty(t, ParseNameList(""))
	require.Empty(t, ParseNameList(" , "))
}

func TestErrorUnwrap(t *testing.T) {
	err := NewError(ErrorStatusAttemptsExhausted, ErrAttemptsExhausted)
	require.ErrorIs(t, err, ErrAttemptsExhausted)
	require.True(t, ErrorHasStatus(err, ErrorStatusAttemptsExhausted))
	require.False(t, ErrorHasStatus(ErrDeadlock, ErrorStatusAttemptsExhausted))
}
