package entity

import (
	"testing"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchConfig_Validate(t *testing.T) {
	t.Run("Accepts five players with two impostors", func(t *testing.T) {
		// Given: five players and two impostors
		conf := NewMatchConfig(5, 2, "animales")

		// When: validating the configuration
		err := conf.Validate()

		// Then: it should be valid
		assert.NoError(t, err)
	})

	t.Run("Rejects four players with three impostors", func(t *testing.T) {
		// Given: four players and three impostors
		conf := NewMatchConfig(4, 3, "animales")

		// When: validating the configuration
		err := conf.Validate()

		// Then: it should be rejected as a configuration error
		require.ErrorIs(t, err, apperror.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "between 1 and 1")
	})

	t.Run("Rejects fewer than three players", func(t *testing.T) {
		// Given: two players
		conf := NewMatchConfig(2, 1, "animales")

		// When: validating the configuration
		err := conf.Validate()

		// Then: it should be rejected
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("Rejects more than the maximum players", func(t *testing.T) {
		// Given: too many players
		conf := NewMatchConfig(MaxPlayers+1, 1, "animales")

		// When: validating the configuration
		err := conf.Validate()

		// Then: it should be rejected
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("Rejects zero impostors", func(t *testing.T) {
		// Given: no impostors
		conf := NewMatchConfig(6, 0, "animales")

		// When: validating the configuration
		err := conf.Validate()

		// Then: it should be rejected
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("Rejects empty category selection", func(t *testing.T) {
		// Given: no categories
		conf := NewMatchConfig(6, 1)

		// When: validating the configuration
		err := conf.Validate()

		// Then: it should be rejected
		require.ErrorIs(t, err, apperror.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "category")
	})
}

func TestMatchConfig_SetPlayerCount(t *testing.T) {
	t.Run("Clamps impostors down when the table shrinks", func(t *testing.T) {
		// Given: seven players with three impostors
		conf := NewMatchConfig(7, 3, "animales")

		// When: the player count drops to four
		conf.SetPlayerCount(4)

		// Then: impostors are clamped to the new maximum
		assert.Equal(t, 4, conf.PlayerCount)
		assert.Equal(t, 1, conf.ImpostorCount)
		assert.NoError(t, conf.Validate())
	})

	t.Run("Never raises impostors when the table grows", func(t *testing.T) {
		// Given: four players with one impostor
		conf := NewMatchConfig(4, 1, "animales")

		// When: the player count grows to eleven
		conf.SetPlayerCount(11)

		// Then: the impostor count is untouched
		assert.Equal(t, 1, conf.ImpostorCount)
	})
}

func TestMaxImpostors(t *testing.T) {
	cases := map[int]int{3: 1, 4: 1, 5: 2, 6: 2, 7: 3, 20: 9}

	for players, expected := range cases {
		assert.Equal(t, expected, MaxImpostors(players), "players=%d", players)
	}
}
