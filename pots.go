package potdraw

import (
	"maps"
	"slices"
)

// PotTable maps a pot id (1..N) to the names of its members in stored order.
// A name belongs to at most one pot; a participant without a pot is not drawn.
type PotTable map[int][]string

// ConfigurePots returns empty pots 1..potCount.
func ConfigurePots(potCount int) (PotTable, error) {
	if potCount < 1 {
		return nil, invalidRequest("invalid pot count: %d", potCount)
	}
	pots := make(PotTable, potCount)
	for id := 1; id <= potCount; id++ {
		pots[id] = []string{}
	}
	return pots, nil
}

// IDs returns the pot ids in ascending order.
func (t PotTable) IDs() []int {
	return slices.Sorted(maps.Keys(t))
}

// PotOf returns the pot holding name, or 0 when it is in none.
func (t PotTable) PotOf(name string) int {
	for id, members := range t {
		if slices.Contains(members, name) {
			return id
		}
	}
	return 0
}

func (t PotTable) Len() int {
	n := 0
	for _, members := range t {
		n += len(members)
	}
	return n
}

// Validate checks that ids are exactly 1..N and that the pots partition their members.
func (t PotTable) Validate() error {
	if len(t) == 0 {
		return invalidRequest("no pots configured")
	}
	seen := make(map[string]int)
	for _, id := range t.IDs() {
		if id < 1 || id > len(t) {
			return invalidRequest("pot ids must be 1..%d, got %d", len(t), id)
		}
		for _, name := range t[id] {
			if name == "" {
				return invalidRequest("pot %d has an empty participant name", id)
			}
			if other, ok := seen[name]; ok {
				return invalidRequest("participant '%s' is in pot %d and pot %d", name, other, id)
			}
			seen[name] = id
		}
	}
	return nil
}

// PotSize is the member count of one pot.
type PotSize struct {
	PotID int
	Size  int
}
