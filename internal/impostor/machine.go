package impostor

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
)

// Machine drives one pass-and-play match on a single device. It is not safe for concurrent use.
type Machine struct {
	lists  WordLists
	src    Source
	config entity.MatchConfig
	roster []*entity.Player

	phase    entity.Phase
	match    *entity.Match
	players  []*entity.Player
	revealed bool
}

// NewMachine starts in setup. The impostor count is clamped into the bound for the given player count.
func NewMachine(lists WordLists, src Source, config entity.MatchConfig) *Machine {
	config = config.Clone()
	config.ImpostorCount = max(1, config.ImpostorCount)
	config.SetPlayerCount(config.PlayerCount)

	return &Machine{
		lists:  lists,
		src:    src,
		config: config,
		phase:  entity.PhaseSetup,
	}
}

func (that *Machine) Phase() entity.Phase {
	return that.phase
}

func (that *Machine) Config() entity.MatchConfig {
	return that.config.Clone()
}

// Roster returns the players of the running match, or the configured roster while in setup.
func (that *Machine) Roster() []*entity.Player {
	if that.match != nil {
		return copyPlayers(that.players)
	}

	return copyPlayers(that.roster)
}

// TurnIndex returns the seat whose turn it is, or -1 when no match is running.
func (that *Machine) TurnIndex() int {
	if that.match == nil {
		return -1
	}

	return that.match.TurnIndex
}

func (that *Machine) CurrentPlayer() (*entity.Player, error) {
	if that.phase != entity.PhasePassDevice && that.phase != entity.PhaseReveal {
		return nil, that.invalid("current player")
	}

	player := *that.players[that.match.TurnIndex]

	return &player, nil
}

func (that *Machine) SetPlayerCount(playerCount int) error {
	if that.phase != entity.PhaseSetup {
		return that.invalid("set player count")
	}

	if playerCount < entity.MinPlayers || playerCount > entity.MaxPlayers {
		return fmt.Errorf("%w: player count must be between %d and %d, got %d",
			apperror.ErrInvalidConfig, entity.MinPlayers, entity.MaxPlayers, playerCount)
	}

	if that.roster != nil && len(that.roster) != playerCount {
		return fmt.Errorf("%w: roster has %d players", apperror.ErrInvalidConfig, len(that.roster))
	}

	that.config.SetPlayerCount(playerCount)

	return nil
}

func (that *Machine) SetImpostorCount(impostorCount int) error {
	if that.phase != entity.PhaseSetup {
		return that.invalid("set impostor count")
	}

	if limit := entity.MaxImpostors(that.config.PlayerCount); impostorCount < 1 || impostorCount > limit {
		return fmt.Errorf("%w: impostor count must be between 1 and %d for %d players, got %d",
			apperror.ErrInvalidConfig, limit, that.config.PlayerCount, impostorCount)
	}

	that.config.ImpostorCount = impostorCount

	return nil
}

func (that *Machine) SetCategories(categories ...string) error {
	if that.phase != entity.PhaseSetup {
		return that.invalid("set categories")
	}

	if len(categories) == 0 {
		return fmt.Errorf("%w: at least one category must be selected", apperror.ErrInvalidConfig)
	}

	for _, category := range categories {
		if _, ok := that.lists.Words(category); !ok {
			return fmt.Errorf("%w: unknown category %q", apperror.ErrInvalidConfig, category)
		}
	}

	that.config.Categories = append([]string(nil), categories...)

	return nil
}

// SetRoster fixes the seat order and names. The roster length becomes the player count.
// An empty roster goes back to generated names.
func (that *Machine) SetRoster(players []*entity.Player) error {
	if that.phase != entity.PhaseSetup {
		return that.invalid("set roster")
	}

	if len(players) == 0 {
		that.roster = nil
		return nil
	}

	if len(players) < entity.MinPlayers || len(players) > entity.MaxPlayers {
		return fmt.Errorf("%w: roster must have between %d and %d players, got %d",
			apperror.ErrInvalidConfig, entity.MinPlayers, entity.MaxPlayers, len(players))
	}

	for _, player := range players {
		if player == nil || strings.TrimSpace(player.Name) == "" {
			return fmt.Errorf("%w: every player needs a name", apperror.ErrInvalidConfig)
		}
	}

	that.roster = copyPlayers(players)
	that.config.SetPlayerCount(len(players))

	return nil
}

// Start draws the word and the roles and hands the device to the first player.
func (that *Machine) Start() error {
	if that.phase != entity.PhaseSetup {
		return that.invalid("start")
	}

	if err := that.deal(); err != nil {
		return err
	}

	that.phase = entity.PhasePassDevice

	return nil
}

// Acknowledge is the current player confirming they hold the device.
func (that *Machine) Acknowledge() error {
	if that.phase != entity.PhasePassDevice {
		return that.invalid("acknowledge")
	}

	that.phase = entity.PhaseReveal
	that.revealed = false

	return nil
}

// Reveal flips the current player's card. Flipping again returns the same card.
func (that *Machine) Reveal() (entity.Card, error) {
	if that.phase != entity.PhaseReveal {
		return entity.Card{}, that.invalid("reveal")
	}

	that.revealed = true

	return that.currentCard(), nil
}

func (that *Machine) Card() (entity.Card, error) {
	if that.phase != entity.PhaseReveal {
		return entity.Card{}, that.invalid("read card")
	}

	if !that.revealed {
		return entity.Card{}, apperror.ErrNotRevealed
	}

	return that.currentCard(), nil
}

// Next hides the card and passes the device on, or opens the debate after the last seat.
func (that *Machine) Next() error {
	if that.phase != entity.PhaseReveal {
		return that.invalid("next")
	}

	if !that.revealed {
		return apperror.ErrNotRevealed
	}

	that.revealed = false

	if that.match.IsLastTurn() {
		that.phase = entity.PhaseDebate
		return nil
	}

	that.match.TurnIndex++
	that.phase = entity.PhasePassDevice

	return nil
}

// SecretWord is shown to the table once the debate is open.
func (that *Machine) SecretWord() (string, error) {
	if that.phase != entity.PhaseDebate {
		return "", that.invalid("show word")
	}

	return that.match.SecretWord, nil
}

func (that *Machine) Category() (string, error) {
	if that.match == nil {
		return "", that.invalid("show category")
	}

	return that.match.Category, nil
}

// Restart deals a new match with the same configuration and roster.
func (that *Machine) Restart() error {
	if that.phase != entity.PhaseDebate {
		return that.invalid("restart")
	}

	if err := that.deal(); err != nil {
		return err
	}

	that.revealed = false
	that.phase = entity.PhasePassDevice

	return nil
}

func (that *Machine) ReturnToSetup() error {
	if that.phase == entity.PhaseSetup {
		return that.invalid("return to setup")
	}

	that.match = nil
	that.players = nil
	that.revealed = false
	that.phase = entity.PhaseSetup

	return nil
}

// deal replaces the match only when every draw succeeded.
func (that *Machine) deal() error {
	if err := that.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	category, word, err := SelectWord(that.src, that.config.Categories, that.lists)
	if err != nil {
		return fmt.Errorf("failed to select word: %w", err)
	}

	roles, err := AssignRoles(that.src, that.config.PlayerCount, that.config.ImpostorCount)
	if err != nil {
		return fmt.Errorf("failed to assign roles: %w", err)
	}

	players := copyPlayers(that.roster)
	if players == nil {
		players = entity.NewLocalRoster(make([]string, that.config.PlayerCount)...)
	}

	that.match = entity.NewMatch(category, word, roles)
	that.players = players

	return nil
}

func (that *Machine) currentCard() entity.Card {
	return entity.NewCard(
		that.players[that.match.TurnIndex].ID,
		that.match.CurrentRole(),
		that.match.SecretWord,
		that.match.Category,
	)
}

func copyPlayers(players []*entity.Player) []*entity.Player {
	if players == nil {
		return nil
	}

	out := make([]*entity.Player, len(players))
	for i, player := range players {
		clone := *player
		out[i] = &clone
	}

	return out
}

func (that *Machine) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s during %s", apperror.ErrInvalidTransition, action, that.phase)
}
