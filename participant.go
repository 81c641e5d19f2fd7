package potdraw

import (
	"slices"
	"strings"
)

// Participant is one entry of the roster. Names are unique and used as the
// key everywhere else.
type Participant struct {
	Name                   string   `json:"name"`
	Association            string   `json:"association"`
	ProhibitedParticipants []string `json:"prohibited_participants,omitempty"`
	ProhibitedAssociations []string `json:"prohibited_associations,omitempty"`
}

func (p Participant) Validate() error {
	if p.Name == "" {
		return invalidRequest("missing participant name")
	}
	if p.Association == "" {
		return invalidRequest("missing association for participant '%s'", p.Name)
	}
	if slices.Contains(p.ProhibitedParticipants, p.Name) {
		return invalidRequest("participant '%s' prohibits itself", p.Name)
	}
	return nil
}

// ParseNameList splits a comma-separated list as typed by an operator,
// e.g. "Ajax, Benfica,,Celtic". Blank and repeated entries are dropped.
func ParseNameList(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}
	return names
}
