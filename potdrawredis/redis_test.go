package potdrawredis

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/require"

	"github.com/castaneai/potdraw"
)

const (
	testingKeyPrefix = "potdrawtest:"
)

func newRedisClientWithMiniRedis(t *testing.T) (rueidis.Client, *miniredis.Miniredis) {
	t.Helper()
	r := miniredis.RunT(t)
	t.Cleanup(func() { r.Close() })
	client, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{r.Addr()}, DisableCache: true})
	if err != nil {
		t.Fatalf("failed to create redis client: %+v", err)
	}
	t.Cleanup(client.Close)
	return client, r
}

// seedRoster registers potCount pots of size participants each, with one
// association per participant.
func seedRoster(t *testing.T, m potdraw.RosterManager, potCount, size int) {
	t.Helper()
	ctx := t.Context()
	require.NoError(t, m.ConfigurePots(ctx, potdraw.ConfigurePotsRequest{PotCount: potCount}))
	for pot := 1; pot <= potCount; pot++ {
		for i := 1; i <= size; i++ {
			name := fmt.Sprintf("p%d-%d", pot, i)
			require.NoError(t, m.AddParticipant(ctx, potdraw.AddParticipantRequest{
				Participant: potdraw.Participant{Name: name, Association: "assoc-" + name},
			}))
			require.NoError(t, m.AssignParticipant(ctx, potdraw.AssignParticipantRequest{Name: name, PotID: pot}))
		}
	}
}
