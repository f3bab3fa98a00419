package entity

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Player struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Avatar   json.RawMessage `json:"avatar,omitempty"`
	RoomCode string          `json:"room_code,omitempty"`
}

// NewLocalRoster builds a pass-and-play roster with seat-ordered ids starting at "1".
// Blank names fall back to "Player N".
func NewLocalRoster(names ...string) []*Player {
	roster := make([]*Player, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Player " + strconv.Itoa(i+1)
		}

		roster = append(roster, &Player{
			ID:   strconv.Itoa(i + 1),
			Name: name,
		})
	}

	return roster
}
