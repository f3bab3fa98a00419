package impostor

import (
	"fmt"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
)

// AssignRoles returns playerCount roles with exactly impostorCount impostors. Every placement of
// the impostors is equally likely: slots are drawn from the whole range and redrawn when taken.
func AssignRoles(src Source, playerCount, impostorCount int) ([]entity.Role, error) {
	if playerCount < 1 || impostorCount < 1 || impostorCount >= playerCount {
		return nil, fmt.Errorf("%w: cannot place %d impostors among %d players",
			apperror.ErrInvalidConfig, impostorCount, playerCount)
	}

	roles := make([]entity.Role, playerCount)
	for i := range roles {
		roles[i] = entity.RolePlayer
	}

	for assigned := 0; assigned < impostorCount; {
		idx := src.IntN(playerCount)
		if roles[idx] == entity.RolePlayer {
			roles[idx] = entity.RoleImpostor
			assigned++
		}
	}

	return roles, nil
}
