package impostor

import (
	"math/rand/v2"
	"testing"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/rocketscienceinc/impostor-backend/internal/dictionary"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T, playerCount, impostorCount int) *Machine {
	t.Helper()

	lists := dictionary.FromMap(map[string][]string{
		"animales": {"Panda", "Jirafa"},
		"comida":   {"Pizza"},
		"vacia":    {},
	})

	return NewMachine(lists, rand.New(rand.NewPCG(1, 2)), entity.NewMatchConfig(playerCount, impostorCount, "animales"))
}

// playTurn walks one seat from passDevice through reveal and returns the card it saw.
func playTurn(t *testing.T, machine *Machine) entity.Card {
	t.Helper()

	require.Equal(t, entity.PhasePassDevice, machine.Phase())
	require.NoError(t, machine.Acknowledge())

	card, err := machine.Reveal()
	require.NoError(t, err)
	require.NoError(t, machine.Next())

	return card
}

func TestMachine_Start(t *testing.T) {
	t.Run("Four players with one impostor reach the debate after four turns", func(t *testing.T) {
		// Given: four players, one impostor, animales = [Panda, Jirafa]
		machine := newTestMachine(t, 4, 1)

		// When: the match starts
		require.NoError(t, machine.Start())

		// Then: the first seat holds the device
		require.Equal(t, entity.PhasePassDevice, machine.Phase())
		require.Equal(t, 0, machine.TurnIndex())

		// When: every seat takes its turn
		var cards []entity.Card
		for range 4 {
			cards = append(cards, playTurn(t, machine))
		}

		// Then: the debate opens with one impostor and a word from the category
		require.Equal(t, entity.PhaseDebate, machine.Phase())

		word, err := machine.SecretWord()
		require.NoError(t, err)
		assert.Contains(t, []string{"Panda", "Jirafa"}, word)

		impostors := 0
		for i, card := range cards {
			assert.Equal(t, "animales", card.Category)
			assert.Equal(t, machine.Roster()[i].ID, card.PlayerID)
			if card.Role.IsImpostor() {
				impostors++
				assert.Equal(t, entity.MaskedWord, card.Word)
			} else {
				assert.Equal(t, word, card.Word)
			}
		}
		assert.Equal(t, 1, impostors)
	})

	t.Run("Four players with three impostors is rejected", func(t *testing.T) {
		// Given: an impostor count above the bound that bypassed the setters
		machine := newTestMachine(t, 4, 1)
		machine.config.ImpostorCount = 3

		// When: the match starts
		err := machine.Start()

		// Then: it is rejected and nothing changed
		require.ErrorIs(t, err, apperror.ErrInvalidConfig)
		assert.Equal(t, entity.PhaseSetup, machine.Phase())
		assert.Equal(t, -1, machine.TurnIndex())
	})

	t.Run("Five players with two impostors starts", func(t *testing.T) {
		machine := newTestMachine(t, 5, 2)

		require.NoError(t, machine.Start())
		assert.Equal(t, entity.PhasePassDevice, machine.Phase())
		assert.Len(t, machine.Roster(), 5)
	})

	t.Run("Empty category is rejected before anything is drawn", func(t *testing.T) {
		// Given: a selection including an empty category
		machine := newTestMachine(t, 4, 1)
		machine.config.Categories = []string{"animales", "vacia"}

		// When: the match starts
		err := machine.Start()

		// Then: the match stays in setup
		require.ErrorIs(t, err, apperror.ErrInvalidConfig)
		assert.Equal(t, entity.PhaseSetup, machine.Phase())
	})

	t.Run("Roster names and order are kept", func(t *testing.T) {
		// Given: a named roster
		machine := newTestMachine(t, 5, 1)
		require.NoError(t, machine.SetRoster(entity.NewLocalRoster("Ana", "Luis", "Eva")))

		// When: the match starts
		require.NoError(t, machine.Start())

		// Then: the roster drives the player count and the seat order
		assert.Equal(t, 3, machine.Config().PlayerCount)

		player, err := machine.CurrentPlayer()
		require.NoError(t, err)
		assert.Equal(t, "Ana", player.Name)
	})
}

func TestMachine_Setup(t *testing.T) {
	t.Run("Initial configuration is clamped into the bound", func(t *testing.T) {
		// Given: four players asking for three impostors
		machine := newTestMachine(t, 4, 3)

		// Then: the machine starts with the largest valid impostor count
		assert.Equal(t, 1, machine.Config().ImpostorCount)
		require.NoError(t, machine.Start())
		assert.Equal(t, 1, machine.match.ImpostorCount())
	})

	t.Run("Initial configuration without impostors gets one", func(t *testing.T) {
		machine := newTestMachine(t, 6, 0)

		assert.Equal(t, 1, machine.Config().ImpostorCount)
	})

	t.Run("Roster is copied in and out", func(t *testing.T) {
		// Given: a roster owned by the caller
		roster := entity.NewLocalRoster("Ana", "Luis", "Eva")
		machine := newTestMachine(t, 3, 1)
		require.NoError(t, machine.SetRoster(roster))
		require.NoError(t, machine.Start())

		// When: the caller renames players through both references
		roster[0].Name = "Mallory"
		machine.Roster()[1].Name = "Mallory"

		// Then: the running match keeps the original names
		names := make([]string, 0, 3)
		for _, player := range machine.Roster() {
			names = append(names, player.Name)
		}
		assert.Equal(t, []string{"Ana", "Luis", "Eva"}, names)

		player, err := machine.CurrentPlayer()
		require.NoError(t, err)
		player.Name = "Mallory"

		player, err = machine.CurrentPlayer()
		require.NoError(t, err)
		assert.Equal(t, "Ana", player.Name)
	})

	t.Run("Lowering the player count clamps impostors down", func(t *testing.T) {
		// Given: seven players with three impostors
		machine := newTestMachine(t, 7, 3)

		// When: the player count drops to four
		require.NoError(t, machine.SetPlayerCount(4))

		// Then: the impostor count fits the new table
		assert.Equal(t, 1, machine.Config().ImpostorCount)

		// When: the player count goes back up
		require.NoError(t, machine.SetPlayerCount(7))

		// Then: the impostor count is not raised
		assert.Equal(t, 1, machine.Config().ImpostorCount)
	})

	t.Run("Impostor count above the bound is rejected", func(t *testing.T) {
		machine := newTestMachine(t, 5, 1)

		err := machine.SetImpostorCount(3)
		require.ErrorIs(t, err, apperror.ErrInvalidConfig)
		assert.Equal(t, 1, machine.Config().ImpostorCount)

		require.NoError(t, machine.SetImpostorCount(2))
		assert.Equal(t, 2, machine.Config().ImpostorCount)
	})

	t.Run("Player count out of range is rejected", func(t *testing.T) {
		machine := newTestMachine(t, 5, 1)

		require.ErrorIs(t, machine.SetPlayerCount(2), apperror.ErrInvalidConfig)
		require.ErrorIs(t, machine.SetPlayerCount(21), apperror.ErrInvalidConfig)
		assert.Equal(t, 5, machine.Config().PlayerCount)
	})

	t.Run("Categories must exist", func(t *testing.T) {
		machine := newTestMachine(t, 5, 1)

		require.ErrorIs(t, machine.SetCategories(), apperror.ErrInvalidConfig)
		require.ErrorIs(t, machine.SetCategories("animales", "planetas"), apperror.ErrInvalidConfig)
		require.NoError(t, machine.SetCategories("comida"))
		assert.Equal(t, []string{"comida"}, machine.Config().Categories)
	})

	t.Run("Setup is locked while a match runs", func(t *testing.T) {
		machine := newTestMachine(t, 5, 1)
		require.NoError(t, machine.Start())

		require.ErrorIs(t, machine.SetPlayerCount(6), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.SetImpostorCount(2), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.SetCategories("comida"), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.SetRoster(nil), apperror.ErrInvalidTransition)
		assert.Equal(t, 5, machine.Config().PlayerCount)
	})
}

func TestMachine_Transitions(t *testing.T) {
	t.Run("Card stays hidden until revealed", func(t *testing.T) {
		// Given: the first player holds the device
		machine := newTestMachine(t, 4, 1)
		require.NoError(t, machine.Start())
		require.NoError(t, machine.Acknowledge())

		// When: the card is read or skipped before the reveal gesture
		_, cardErr := machine.Card()
		nextErr := machine.Next()

		// Then: both are refused and the turn does not move
		require.ErrorIs(t, cardErr, apperror.ErrNotRevealed)
		require.ErrorIs(t, nextErr, apperror.ErrNotRevealed)
		assert.Equal(t, entity.PhaseReveal, machine.Phase())
		assert.Equal(t, 0, machine.TurnIndex())
	})

	t.Run("Reveal is idempotent", func(t *testing.T) {
		machine := newTestMachine(t, 4, 1)
		require.NoError(t, machine.Start())
		require.NoError(t, machine.Acknowledge())

		first, err := machine.Reveal()
		require.NoError(t, err)

		second, err := machine.Reveal()
		require.NoError(t, err)

		card, err := machine.Card()
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, first, card)
	})

	t.Run("Invalid transitions leave the state untouched", func(t *testing.T) {
		// Given: a machine in each phase
		machine := newTestMachine(t, 4, 1)

		// Then: actions from another phase are refused
		require.ErrorIs(t, machine.Acknowledge(), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.Next(), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.Restart(), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.ReturnToSetup(), apperror.ErrInvalidTransition)
		_, err := machine.Reveal()
		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
		_, err = machine.SecretWord()
		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
		assert.Equal(t, entity.PhaseSetup, machine.Phase())

		require.NoError(t, machine.Start())
		require.ErrorIs(t, machine.Start(), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.Next(), apperror.ErrInvalidTransition)
		_, err = machine.Reveal()
		require.ErrorIs(t, err, apperror.ErrInvalidTransition)
		assert.Equal(t, entity.PhasePassDevice, machine.Phase())
		assert.Equal(t, 0, machine.TurnIndex())

		require.NoError(t, machine.Acknowledge())
		require.ErrorIs(t, machine.Acknowledge(), apperror.ErrInvalidTransition)
		require.ErrorIs(t, machine.Restart(), apperror.ErrInvalidTransition)
		assert.Equal(t, entity.PhaseReveal, machine.Phase())
	})

	t.Run("Turn index moves by one without skipping", func(t *testing.T) {
		machine := newTestMachine(t, 6, 2)
		require.NoError(t, machine.Start())

		for want := 0; want < 6; want++ {
			require.Equal(t, want, machine.TurnIndex())
			playTurn(t, machine)
		}

		assert.Equal(t, entity.PhaseDebate, machine.Phase())
		assert.Equal(t, 5, machine.TurnIndex())
	})

	t.Run("Restart deals a new match from the first seat", func(t *testing.T) {
		// Given: a finished round of four
		machine := newTestMachine(t, 4, 1)
		require.NoError(t, machine.Start())
		for range 4 {
			playTurn(t, machine)
		}

		// When: the table plays again
		require.NoError(t, machine.Restart())

		// Then: the device goes back to the first seat with the same roster size
		assert.Equal(t, entity.PhasePassDevice, machine.Phase())
		assert.Equal(t, 0, machine.TurnIndex())
		assert.Len(t, machine.Roster(), 4)
		assert.Equal(t, 1, machine.match.ImpostorCount())
	})

	t.Run("Return to setup keeps the configuration", func(t *testing.T) {
		machine := newTestMachine(t, 5, 2)
		require.NoError(t, machine.Start())
		require.NoError(t, machine.Acknowledge())

		require.NoError(t, machine.ReturnToSetup())

		assert.Equal(t, entity.PhaseSetup, machine.Phase())
		assert.Equal(t, -1, machine.TurnIndex())
		assert.Equal(t, entity.NewMatchConfig(5, 2, "animales"), machine.Config())
	})
}
