package entity

// Match is the state of a single local round. Only TurnIndex changes once it is created.
type Match struct {
	SecretWord string `json:"secret_word"`
	Category   string `json:"category"`
	Roles      []Role `json:"roles"`
	TurnIndex  int    `json:"turn_index"`
}

func NewMatch(category, word string, roles []Role) *Match {
	return &Match{
		SecretWord: word,
		Category:   category,
		Roles:      roles,
		TurnIndex:  0,
	}
}

func (that *Match) ImpostorCount() int {
	count := 0
	for _, role := range that.Roles {
		if role.IsImpostor() {
			count++
		}
	}

	return count
}

func (that *Match) CurrentRole() Role {
	return that.Roles[that.TurnIndex]
}

func (that *Match) IsLastTurn() bool {
	return that.TurnIndex+1 >= len(that.Roles)
}
