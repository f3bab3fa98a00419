package entity

type Role string

const (
	RolePlayer   Role = "player"
	RoleImpostor Role = "impostor"

	// MaskedWord is what an impostor sees in place of the secret word.
	MaskedWord = "???"
)

func (that Role) IsImpostor() bool {
	return that == RoleImpostor
}

// Card is what a single player sees when their role is revealed.
type Card struct {
	PlayerID string `json:"player_id,omitempty"`
	Role     Role   `json:"role"`
	Word     string `json:"word"`
	Category string `json:"category,omitempty"`
}

func NewCard(playerID string, role Role, word, category string) Card {
	if role.IsImpostor() {
		word = MaskedWord
	}

	return Card{
		PlayerID: playerID,
		Role:     role,
		Word:     word,
		Category: category,
	}
}
