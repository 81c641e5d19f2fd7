package potdraw

import (
	"errors"
	"fmt"
)

type DrawConfig struct {
	// AllowSameSourcePot lets a participant draw opponents from its own pot.
	AllowSameSourcePot bool `json:"allow_same_source_pot"`
	// QuotaPerPot is the number of opponents drawn from each destination pot.
	QuotaPerPot int `json:"quota_per_pot"`
	// AssociationCap limits how often one association may appear among a
	// participant's opponents. 0 disables the cap.
	AssociationCap int `json:"association_cap,omitempty"`
}

func (c DrawConfig) Validate() error {
	if c.QuotaPerPot < 1 {
		return invalidRequest("invalid quota per pot: %d", c.QuotaPerPot)
	}
	if c.AssociationCap < 0 {
		return invalidRequest("invalid association cap: %d", c.AssociationCap)
	}
	return nil
}

// Roster is the long-lived input of a draw: the participant registry keyed
// by name and the pot membership table. Attempts only read it.
type Roster struct {
	Participants map[string]Participant `json:"participants"`
	Pots         PotTable               `json:"pots"`
}

// Validate fails fast on configurations no attempt could ever complete.
// It is size-based: exclusion lists are left to the attempts themselves.
func (r Roster) Validate(conf DrawConfig) error {
	if err := conf.Validate(); err != nil {
		return err
	}
	if err := r.Pots.Validate(); err != nil {
		return err
	}
	if r.Pots.Len() == 0 {
		return invalidRequest("no participants in any pot")
	}
	for _, id := range r.Pots.IDs() {
		if len(r.Pots[id]) == 0 {
			return invalidRequest("pot %d is empty", id)
		}
		for _, name := range r.Pots[id] {
			p, ok := r.Participants[name]
			if !ok {
				return NewError(ErrorStatusNotFound, fmt.Errorf("participant '%s' in pot %d is not registered", name, id))
			}
			if p.Name != name {
				return invalidRequest("participant registered as '%s' is named '%s'", name, p.Name)
			}
			if err := p.Validate(); err != nil {
				return err
			}
		}
	}
	if !conf.AllowSameSourcePot && len(r.Pots) == 1 {
		return invalidRequest("a single pot needs same-pot pairing to be allowed")
	}
	for _, src := range r.Pots.IDs() {
		for _, dst := range destinationPots(r.Pots.IDs(), src, conf.AllowSameSourcePot) {
			if err := checkPotPair(len(r.Pots[src]), len(r.Pots[dst]), src, dst, conf.QuotaPerPot); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkPotPair(srcSize, dstSize, src, dst, quota int) error {
	if src == dst {
		if srcSize-1 < quota {
			return invalidRequest("quota %d exceeds the %d available opponents in pot %d", quota, srcSize-1, dst)
		}
		// every pairing inside the pot fills two slots
		if srcSize*quota%2 != 0 {
			return invalidRequest("pot %d with %d participants cannot fill quota %d internally", src, srcSize, quota)
		}
		return nil
	}
	if dstSize < quota {
		return invalidRequest("quota %d exceeds the %d available opponents in pot %d", quota, dstSize, dst)
	}
	if srcSize != dstSize {
		return NewError(ErrorStatusInvalidRequest, errors.Join(
			fmt.Errorf("pot %d has %d participants but pot %d has %d", src, srcSize, dst, dstSize),
			errors.New("pots drawing from each other must be the same size")))
	}
	return nil
}

// destinationPots lists the pots a member of src draws from, ascending.
func destinationPots(ids []int, src int, allowSame bool) []int {
	dsts := make([]int, 0, len(ids))
	for _, id := range ids {
		if id == src && !allowSame {
			continue
		}
		dsts = append(dsts, id)
	}
	return dsts
}
