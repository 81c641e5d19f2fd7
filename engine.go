package potdraw

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Engine runs single draw attempts over an immutable copy of a roster.
// Attempts share nothing mutable, so an Engine may run attempts concurrently.
type Engine struct {
	conf   DrawConfig
	potIDs []int
	// members holds slot indexes per pot position (pot id - 1), in stored order.
	members [][]int
	slots   []slot
	// order is the allocator visiting order: pots ascending, members in stored order.
	order []int

	// trace, when set, observes the attempt after every allocation.
	trace func(a *attempt)
}

type slot struct {
	name         string
	association  string
	pot          int
	destinations []int
	prohibited   map[string]struct{}
	prohibitedAs map[string]struct{}
}

func NewEngine(roster Roster, conf DrawConfig) (*Engine, error) {
	if err := roster.Validate(conf); err != nil {
		return nil, err
	}
	e := &Engine{
		conf:    conf,
		potIDs:  roster.Pots.IDs(),
		members: make([][]int, len(roster.Pots)),
	}
	for _, id := range e.potIDs {
		for _, name := range roster.Pots[id] {
			p := roster.Participants[name]
			s := slot{
				name:         p.Name,
				association:  p.Association,
				pot:          id,
				destinations: destinationPots(e.potIDs, id, conf.AllowSameSourcePot),
				prohibited:   make(map[string]struct{}, len(p.ProhibitedParticipants)),
				prohibitedAs: make(map[string]struct{}, len(p.ProhibitedAssociations)),
			}
			for _, n := range p.ProhibitedParticipants {
				s.prohibited[n] = struct{}{}
			}
			for _, a := range p.ProhibitedAssociations {
				s.prohibitedAs[a] = struct{}{}
			}
			idx := len(e.slots)
			e.slots = append(e.slots, s)
			e.members[id-1] = append(e.members[id-1], idx)
			e.order = append(e.order, idx)
		}
	}
	return e, nil
}

// RunAttempt performs one complete attempt from a clean state.
// It returns ErrDeadlock when a candidate pool empties before its quota is
// met and ErrVerification when the final counts are inconsistent. No partial
// result is returned on failure.
func (e *Engine) RunAttempt(rng *rand.Rand) (*DrawResult, error) {
	a := e.newAttempt()
	if !a.propagate() {
		return nil, ErrDeadlock
	}
	quota := e.conf.QuotaPerPot
	for _, s := range e.order {
		for _, dst := range e.slots[s].destinations {
			for len(a.assigned[s][dst-1]) < quota {
				pool := a.pools[s][dst-1]
				if len(pool) == 0 {
					return nil, ErrDeadlock
				}
				a.allocate(s, pool[rng.IntN(len(pool))])
				if !a.propagate() {
					return nil, ErrDeadlock
				}
			}
		}
	}
	if err := a.verify(); err != nil {
		return nil, err
	}
	return a.result(), nil
}

// attempt is the attempt-scoped state of every participant, indexed by slot
// and destination pot position.
type attempt struct {
	e        *Engine
	assigned [][][]int
	pools    [][][]int
	assocs   []map[string]int
}

func (e *Engine) newAttempt() *attempt {
	a := &attempt{
		e:        e,
		assigned: make([][][]int, len(e.slots)),
		pools:    make([][][]int, len(e.slots)),
		assocs:   make([]map[string]int, len(e.slots)),
	}
	for s := range e.slots {
		a.assigned[s] = make([][]int, len(e.potIDs))
		a.pools[s] = make([][]int, len(e.potIDs))
		a.assocs[s] = make(map[string]int)
	}
	return a
}

// canPair reports whether self may take other as an opponent from other's pot.
// It only reads attempt state.
func (a *attempt) canPair(self, other int) bool {
	s, o := &a.e.slots[self], &a.e.slots[other]
	if self == other || s.association == o.association {
		return false
	}
	if _, ok := s.prohibited[o.name]; ok {
		return false
	}
	if _, ok := s.prohibitedAs[o.association]; ok {
		return false
	}
	drawn := a.assigned[self][o.pot-1]
	if len(drawn) >= a.e.conf.QuotaPerPot || slices.Contains(drawn, other) {
		return false
	}
	if limit := a.e.conf.AssociationCap; limit > 0 && a.assocs[self][o.association] >= limit {
		return false
	}
	return true
}

// buildPool lists the members of dst that s may pair with, checked from both sides.
func (a *attempt) buildPool(s, dst int) []int {
	var pool []int
	for _, c := range a.e.members[dst-1] {
		if a.canPair(c, s) && a.canPair(s, c) {
			pool = append(pool, c)
		}
	}
	return pool
}

func (a *attempt) rebuildPools() {
	for s := range a.e.slots {
		for _, dst := range a.e.slots[s].destinations {
			a.pools[s][dst-1] = a.buildPool(s, dst)
		}
	}
}

// allocate records the pairing on both sides. It does not validate.
func (a *attempt) allocate(s, o int) {
	sp, op := a.e.slots[s].pot, a.e.slots[o].pot
	a.assigned[s][op-1] = append(a.assigned[s][op-1], o)
	a.assigned[o][sp-1] = append(a.assigned[o][sp-1], s)
	a.assocs[s][a.e.slots[o].association]++
	a.assocs[o][a.e.slots[s].association]++
	if a.e.trace != nil {
		a.e.trace(a)
	}
}

// propagate rebuilds pools and commits forced moves until none is left.
// It returns false as soon as some quota can no longer be reached.
func (a *attempt) propagate() bool {
	for {
		a.rebuildPools()
		if a.stranded() {
			return false
		}
		if !a.commitForced() {
			return true
		}
	}
}

// stranded reports a (participant, pot) pair whose remaining candidates
// cannot cover its remaining slots. Pools only shrink, so this is final.
func (a *attempt) stranded() bool {
	quota := a.e.conf.QuotaPerPot
	for s := range a.e.slots {
		for _, dst := range a.e.slots[s].destinations {
			if len(a.pools[s][dst-1])+len(a.assigned[s][dst-1]) < quota {
				return true
			}
		}
	}
	return false
}

// commitForced commits the first pool whose every candidate is required.
func (a *attempt) commitForced() bool {
	quota := a.e.conf.QuotaPerPot
	for _, s := range a.e.order {
		for _, dst := range a.e.slots[s].destinations {
			pool := a.pools[s][dst-1]
			if len(pool) == 0 || len(pool)+len(a.assigned[s][dst-1]) != quota {
				continue
			}
			for _, c := range pool {
				// an earlier commit in this pool may have used up c's room
				if a.canPair(s, c) && a.canPair(c, s) {
					a.allocate(s, c)
				}
			}
			return true
		}
	}
	return false
}

func (a *attempt) verify() error {
	quota := a.e.conf.QuotaPerPot
	for s, sl := range a.e.slots {
		for _, id := range a.e.potIDs {
			want := 0
			if slices.Contains(sl.destinations, id) {
				want = quota
			}
			if got := len(a.assigned[s][id-1]); got != want {
				return fmt.Errorf("%w: '%s' has %d opponents from pot %d, want %d", ErrVerification, sl.name, got, id, want)
			}
		}
	}
	return nil
}

func (a *attempt) result() *DrawResult {
	res := &DrawResult{Entries: make([]DrawEntry, 0, len(a.e.order))}
	for _, s := range a.e.order {
		sl := a.e.slots[s]
		entry := DrawEntry{
			Name:        sl.name,
			Association: sl.association,
			Pot:         sl.pot,
			Opponents:   make(map[int][]string, len(sl.destinations)),
		}
		for _, dst := range sl.destinations {
			names := make([]string, 0, len(a.assigned[s][dst-1]))
			for _, o := range a.assigned[s][dst-1] {
				names = append(names, a.e.slots[o].name)
			}
			entry.Opponents[dst] = names
		}
		res.Entries = append(res.Entries, entry)
	}
	return res
}
