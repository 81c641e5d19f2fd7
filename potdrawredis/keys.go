package potdrawredis

import "fmt"

// Roster keys share the {roster} hash tag: the Lua scripts touch several of
// them at once and build pot keys from redisKeyPotPrefix.

func redisKeyParticipants(prefix string) string {
	return fmt.Sprintf("%s{roster}:participants", prefix)
}

func redisKeyParticipantPot(prefix string) string {
	return fmt.Sprintf("%s{roster}:participant_pot", prefix)
}

func redisKeyPotCount(prefix string) string {
	return fmt.Sprintf("%s{roster}:pot_count", prefix)
}

// redisKeyPotPrefix is completed with the pot id, also inside Lua scripts.
func redisKeyPotPrefix(prefix string) string {
	return fmt.Sprintf("%s{roster}:pot:", prefix)
}

func redisKeyPot(prefix string, potID int) string {
	return fmt.Sprintf("%s%d", redisKeyPotPrefix(prefix), potID)
}

func redisKeyAssociations(prefix string) string {
	return fmt.Sprintf("%s{roster}:associations", prefix)
}

func redisKeyDrawResult(prefix, drawID string) string {
	return fmt.Sprintf("%sdraw_result:%s", prefix, drawID)
}

func redisPubSubChannelDrawCompleted(prefix string) string {
	return fmt.Sprintf("%sdraw_completed", prefix)
}
