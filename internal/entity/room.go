package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
)

const (
	StatusWaiting   = "waiting"
	StatusRevealing = "revealing"
	StatusDebating  = "debating"
	StatusVoting    = "voting"
	StatusFinished  = "finished"

	WinnerCivilians = "civilians"
	WinnerImpostors = "impostors"
)

const (
	MinRoomCapacity     = 4
	MaxRoomCapacity     = MaxPlayers
	DefaultRoomCapacity = 10
)

type RoomSettings struct {
	Categories    []string `json:"categories"`
	MaxPlayers    int      `json:"max_players"`
	ImpostorCount int      `json:"impostor_count"`
}

type Room struct {
	Code          string            `json:"code"`
	HostID        string            `json:"host_id"`
	Players       []*Player         `json:"players"`
	Settings      RoomSettings      `json:"settings"`
	Status        string            `json:"status"`
	Round         int               `json:"round"`
	Category      string            `json:"category,omitempty"`
	SecretWord    string            `json:"secret_word,omitempty"`
	Roles         map[string]Role   `json:"roles,omitempty"`
	Ready         map[string]bool   `json:"ready,omitempty"`
	Votes         map[string]string `json:"votes,omitempty"`
	RosterVersion int               `json:"roster_version"`
}

// VoteOutcome is the result of a finished voting phase.
type VoteOutcome struct {
	Winner      string         `json:"winner"`
	EjectedID   string         `json:"ejected_id,omitempty"`
	Tie         bool           `json:"tie"`
	VoteCount   map[string]int `json:"vote_count"`
	ImpostorIDs []string       `json:"impostor_ids"`
	SecretWord  string         `json:"secret_word"`
	Category    string         `json:"category"`
}

func NewRoom(code string, host *Player, settings RoomSettings) *Room {
	host.RoomCode = code

	return &Room{
		Code:          code,
		HostID:        host.ID,
		Players:       []*Player{host},
		Settings:      settings,
		Status:        StatusWaiting,
		RosterVersion: 1,
	}
}

func (that RoomSettings) Validate() error {
	if len(that.Categories) == 0 {
		return fmt.Errorf("%w: at least one category must be selected", apperror.ErrInvalidConfig)
	}

	if that.MaxPlayers < MinRoomCapacity || that.MaxPlayers > MaxRoomCapacity {
		return fmt.Errorf("%w: max players must be between %d and %d, got %d",
			apperror.ErrInvalidConfig, MinRoomCapacity, MaxRoomCapacity, that.MaxPlayers)
	}

	if limit := MaxImpostors(that.MaxPlayers); that.ImpostorCount < 1 || that.ImpostorCount > limit {
		return fmt.Errorf("%w: impostor count must be between 1 and %d for %d players, got %d",
			apperror.ErrInvalidConfig, limit, that.MaxPlayers, that.ImpostorCount)
	}

	return nil
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

// InRound reports whether roles have been handed out and the round has not ended yet.
func (that *Room) InRound() bool {
	switch that.Status {
	case StatusRevealing, StatusDebating, StatusVoting:
		return true
	default:
		return false
	}
}

func (that *Room) IsHost(playerID string) bool {
	return that.HostID == playerID
}

func (that *Room) FindPlayer(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}

func (that *Room) HasNickname(name string) bool {
	for _, player := range that.Players {
		if strings.EqualFold(player.Name, name) {
			return true
		}
	}

	return false
}

// ConfirmJoinable checks whether a new player may enter the room.
func (that *Room) ConfirmJoinable(name string) error {
	if that.InRound() {
		return apperror.ErrGameAlreadyStarted
	}

	if len(that.Players) >= that.Settings.MaxPlayers {
		return apperror.ErrRoomFull
	}

	if that.HasNickname(name) {
		return fmt.Errorf("%w: %s", apperror.ErrNicknameTaken, name)
	}

	return nil
}

func (that *Room) AddPlayer(player *Player) {
	player.RoomCode = that.Code
	that.Players = append(that.Players, player)
	that.RosterVersion++
}

// RemovePlayer drops the player from the roster and hands the host role to the next player in
// roster order when needed. It reports whether the player was present.
func (that *Room) RemovePlayer(playerID string) bool {
	idx := slices.IndexFunc(that.Players, func(p *Player) bool { return p.ID == playerID })
	if idx < 0 {
		return false
	}

	that.Players = slices.Delete(that.Players, idx, idx+1)
	delete(that.Roles, playerID)
	delete(that.Ready, playerID)
	delete(that.Votes, playerID)

	for voter, target := range that.Votes {
		if target == playerID {
			delete(that.Votes, voter)
		}
	}

	if that.HostID == playerID {
		that.HostID = ""
		if len(that.Players) > 0 {
			that.HostID = that.Players[0].ID
		}
	}

	that.RosterVersion++

	return true
}

// BeginRound hands out a freshly drawn word and roles, in roster order.
func (that *Room) BeginRound(category, word string, roles []Role) {
	that.Category = category
	that.SecretWord = word
	that.Roles = make(map[string]Role, len(that.Players))
	for i, player := range that.Players {
		that.Roles[player.ID] = roles[i]
	}

	that.Ready = make(map[string]bool, len(that.Players))
	that.Votes = make(map[string]string, len(that.Players))
	that.Status = StatusRevealing
	that.Round++
}

// ResetRound discards the current round and sends the room back to the lobby.
func (that *Room) ResetRound() {
	that.Category = ""
	that.SecretWord = ""
	that.Roles = nil
	that.Ready = nil
	that.Votes = nil
	that.Status = StatusWaiting
}

func (that *Room) CardFor(playerID string) Card {
	return NewCard(playerID, that.Roles[playerID], that.SecretWord, that.Category)
}

func (that *Room) ImpostorIDs() []string {
	ids := make([]string, 0)
	for _, player := range that.Players {
		if that.Roles[player.ID].IsImpostor() {
			ids = append(ids, player.ID)
		}
	}

	return ids
}

func (that *Room) AllReady() bool {
	for _, player := range that.Players {
		if !that.Ready[player.ID] {
			return false
		}
	}

	return true
}

func (that *Room) AllVoted() bool {
	for _, player := range that.Players {
		if _, ok := that.Votes[player.ID]; !ok {
			return false
		}
	}

	return true
}

// Tally counts the votes. A unique most-voted player is ejected, a tie ejects nobody.
// Civilians win only by ejecting an impostor.
func (that *Room) Tally() *VoteOutcome {
	voteCount := make(map[string]int)
	for _, target := range that.Votes {
		voteCount[target]++
	}

	maxVotes := 0
	var leaders []string
	for playerID, count := range voteCount {
		switch {
		case count > maxVotes:
			maxVotes = count
			leaders = []string{playerID}
		case count == maxVotes:
			leaders = append(leaders, playerID)
		}
	}

	outcome := &VoteOutcome{
		Winner:      WinnerImpostors,
		Tie:         len(leaders) != 1,
		VoteCount:   voteCount,
		ImpostorIDs: that.ImpostorIDs(),
		SecretWord:  that.SecretWord,
		Category:    that.Category,
	}

	if !outcome.Tie {
		outcome.EjectedID = leaders[0]
		if that.Roles[outcome.EjectedID].IsImpostor() {
			outcome.Winner = WinnerCivilians
		}
	}

	return outcome
}

// RoomSummary is the part of a room everyone may see. It never carries roles or the word.
type RoomSummary struct {
	Code          string       `json:"code"`
	HostID        string       `json:"host_id"`
	Players       []*Player    `json:"players"`
	Settings      RoomSettings `json:"settings"`
	Status        string       `json:"status"`
	Round         int          `json:"round"`
	ReadyCount    int          `json:"ready_count"`
	VoteCount     int          `json:"vote_count"`
	RosterVersion int          `json:"roster_version"`
}

func (that *Room) Summary() RoomSummary {
	return RoomSummary{
		Code:          that.Code,
		HostID:        that.HostID,
		Players:       that.Players,
		Settings:      that.Settings,
		Status:        that.Status,
		Round:         that.Round,
		ReadyCount:    len(that.Ready),
		VoteCount:     len(that.Votes),
		RosterVersion: that.RosterVersion,
	}
}
