package entity

import (
	"fmt"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
)

const (
	MinPlayers = 3
	MaxPlayers = 20
)

type MatchConfig struct {
	PlayerCount   int      `json:"player_count"`
	ImpostorCount int      `json:"impostor_count"`
	Categories    []string `json:"categories"`
}

func NewMatchConfig(playerCount, impostorCount int, categories ...string) MatchConfig {
	return MatchConfig{
		PlayerCount:   playerCount,
		ImpostorCount: impostorCount,
		Categories:    categories,
	}
}

// MaxImpostors returns the largest impostor count that keeps impostors strictly below half the table.
func MaxImpostors(playerCount int) int {
	return (playerCount - 1) / 2
}

// SetPlayerCount changes the player count and clamps the impostor count down if it no longer fits.
// It never raises the impostor count.
func (that *MatchConfig) SetPlayerCount(playerCount int) {
	that.PlayerCount = playerCount

	limit := max(1, MaxImpostors(playerCount))
	if that.ImpostorCount > limit {
		that.ImpostorCount = limit
	}
}

func (that *MatchConfig) Validate() error {
	if that.PlayerCount < MinPlayers {
		return fmt.Errorf("%w: need at least %d players, got %d", apperror.ErrInvalidConfig, MinPlayers, that.PlayerCount)
	}

	if that.PlayerCount > MaxPlayers {
		return fmt.Errorf("%w: at most %d players allowed, got %d", apperror.ErrInvalidConfig, MaxPlayers, that.PlayerCount)
	}

	if limit := MaxImpostors(that.PlayerCount); that.ImpostorCount < 1 || that.ImpostorCount > limit {
		return fmt.Errorf("%w: impostor count must be between 1 and %d for %d players, got %d",
			apperror.ErrInvalidConfig, limit, that.PlayerCount, that.ImpostorCount)
	}

	if len(that.Categories) == 0 {
		return fmt.Errorf("%w: at least one category must be selected", apperror.ErrInvalidConfig)
	}

	return nil
}

func (that MatchConfig) Clone() MatchConfig {
	that.Categories = append([]string(nil), that.Categories...)
	return that
}
