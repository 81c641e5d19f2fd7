package potdraw

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type DrawResult struct {
	Entries []DrawEntry `json:"entries"`
}

// DrawEntry is the outcome for one participant: its opponents per destination pot.
type DrawEntry struct {
	Name        string           `json:"name"`
	Association string           `json:"association"`
	Pot         int              `json:"pot"`
	Opponents   map[int][]string `json:"opponents"`
}

// Summary renders the entry for display, one line per destination pot:
//
//	Ajax
//	Pot 2(1): Celtic
//	Pot 3(1): Dinamo
func (e DrawEntry) Summary() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	for _, id := range slices.Sorted(maps.Keys(e.Opponents)) {
		fmt.Fprintf(&sb, "\nPot %d(%d): %s", id, len(e.Opponents[id]), strings.Join(e.Opponents[id], ", "))
	}
	return sb.String()
}

func (r *DrawResult) Summaries() []string {
	summaries := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		summaries = append(summaries, e.Summary())
	}
	return summaries
}

// Entry returns the entry for name.
func (r *DrawResult) Entry(name string) (DrawEntry, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return DrawEntry{}, false
}
