package potdrawredis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/castaneai/potdraw"
)

type participantJSON struct {
	Name                   string   `json:"name"`
	Association            string   `json:"association"`
	ProhibitedParticipants []string `json:"prohibited_participants,omitempty"`
	ProhibitedAssociations []string `json:"prohibited_associations,omitempty"`
}

type drawRecordJSON struct {
	DrawID    string               `json:"draw_id"`
	Config    potdraw.DrawConfig   `json:"config"`
	Outcome   *potdraw.DrawOutcome `json:"outcome"`
	CreatedAt time.Time            `json:"created_at"`
}

func encodeParticipant(p potdraw.Participant) (string, error) {
	j := participantJSON{
		Name:                   p.Name,
		Association:            p.Association,
		ProhibitedParticipants: p.ProhibitedParticipants,
		ProhibitedAssociations: p.ProhibitedAssociations,
	}
	bytes, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("failed to encode participant: %w", err)
	}
	return rueidis.BinaryString(bytes), nil
}

func decodeParticipant(data string) (potdraw.Participant, error) {
	var j participantJSON
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return potdraw.Participant{}, fmt.Errorf("failed to decode participant: %w", err)
	}
	if j.Name == "" {
		return potdraw.Participant{}, fmt.Errorf("failed to decode participant: missing name")
	}
	return potdraw.Participant{
		Name:                   j.Name,
		Association:            j.Association,
		ProhibitedParticipants: j.ProhibitedParticipants,
		ProhibitedAssociations: j.ProhibitedAssociations,
	}, nil
}

func encodeDrawRecord(r drawRecordJSON) (string, error) {
	bytes, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode draw record: %w", err)
	}
	return rueidis.BinaryString(bytes), nil
}

func decodeDrawRecord(data []byte) (*drawRecordJSON, error) {
	var r drawRecordJSON
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode draw record: %w", err)
	}
	if r.DrawID == "" || r.Outcome == nil {
		return nil, fmt.Errorf("failed to decode draw record: missing draw_id or outcome")
	}
	return &r, nil
}
