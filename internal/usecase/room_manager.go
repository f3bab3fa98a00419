package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/rocketscienceinc/impostor-backend/internal/impostor"
	"github.com/rocketscienceinc/impostor-backend/internal/pkg"
)

const (
	maxNicknameLength = 20
	roomCodeAttempts  = 10
	defaultCodeLength = 6
	defaultMaxInRoom  = entity.DefaultRoomCapacity
	defaultImpostors  = 1
)

var ErrNoFreeRoomCode = errors.New("could not find a free room code")

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	DeleteByID(ctx context.Context, id string) error
}

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
}

// GameConfig is what the host chooses when starting a round. Zero values fall back to the
// room settings.
type GameConfig struct {
	Categories    []string `json:"categories"`
	ImpostorCount int      `json:"impostors"`
}

// Progress reports what an action moved the round to.
type Progress struct {
	DebateStarted bool
	Outcome       *entity.VoteOutcome
}

type RoomManagerOptions struct {
	CodeLength        int
	DefaultMaxPlayers int
}

type RoomManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	roomRepo   roomRepo

	lists impostor.WordLists
	src   impostor.Source
	locks *keyedMutex

	codeLength        int
	defaultMaxPlayers int
}

func NewRoomManager(
	logger *slog.Logger,
	playerRepo playerRepo,
	roomRepo roomRepo,
	lists impostor.WordLists,
	src impostor.Source,
	opts RoomManagerOptions,
) *RoomManager {
	if opts.CodeLength <= 0 {
		opts.CodeLength = defaultCodeLength
	}

	if opts.DefaultMaxPlayers <= 0 {
		opts.DefaultMaxPlayers = defaultMaxInRoom
	}

	return &RoomManager{
		logger: logger.With("component", "room_manager"),

		playerRepo: playerRepo,
		roomRepo:   roomRepo,

		lists: lists,
		src:   src,
		locks: newKeyedMutex(),

		codeLength:        opts.CodeLength,
		defaultMaxPlayers: opts.DefaultMaxPlayers,
	}
}

func (that *RoomManager) CreateRoom(
	ctx context.Context,
	nickname string,
	avatar json.RawMessage,
	settings entity.RoomSettings,
) (*entity.Room, *entity.Player, error) {
	log := that.logger.With("method", "CreateRoom")

	nickname, err := validateNickname(nickname)
	if err != nil {
		return nil, nil, err
	}

	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = that.defaultMaxPlayers
	}

	if settings.ImpostorCount == 0 {
		settings.ImpostorCount = defaultImpostors
	}

	if err = settings.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to validate settings: %w", err)
	}

	if err = that.confirmCategories(settings.Categories); err != nil {
		return nil, nil, err
	}

	code, err := that.freeRoomCode(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	unlock := that.locks.Lock(code)
	defer unlock()

	host := &entity.Player{
		ID:     pkg.GeneratePlayerID(),
		Name:   nickname,
		Avatar: avatar,
	}

	room := entity.NewRoom(code, host, settings)
	if err = that.updateRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	if err = that.updatePlayer(ctx, host); err != nil {
		return nil, nil, err
	}

	log.Info("room created", "room", code, "player", host.ID)

	return room, host, nil
}

func (that *RoomManager) JoinRoom(
	ctx context.Context,
	code, nickname string,
	avatar json.RawMessage,
) (*entity.Room, *entity.Player, error) {
	log := that.logger.With("method", "JoinRoom")

	nickname, err := validateNickname(nickname)
	if err != nil {
		return nil, nil, err
	}

	code = pkg.NormalizeRoomCode(code)

	unlock := that.locks.Lock(code)
	defer unlock()

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if err = room.ConfirmJoinable(nickname); err != nil {
		return nil, nil, fmt.Errorf("failed to join room %s: %w", code, err)
	}

	player := &entity.Player{
		ID:     pkg.GeneratePlayerID(),
		Name:   nickname,
		Avatar: avatar,
	}

	room.AddPlayer(player)
	if err = that.updateRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, nil, err
	}

	log.Info("player joined", "room", code, "player", player.ID, "players", len(room.Players))

	return room, player, nil
}

// StartGame deals a new round: one word for the room and a private card per player.
// A finished room can be started again.
func (that *RoomManager) StartGame(
	ctx context.Context,
	code, playerID string,
	config GameConfig,
) (*entity.Room, map[string]entity.Card, error) {
	log := that.logger.With("method", "StartGame")

	code = pkg.NormalizeRoomCode(code)

	unlock := that.locks.Lock(code)
	defer unlock()

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if !room.IsHost(playerID) {
		return nil, nil, apperror.ErrNotHost
	}

	if !room.IsWaiting() && !room.IsFinished() {
		return nil, nil, apperror.ErrGameAlreadyStarted
	}

	categories := config.Categories
	if len(categories) == 0 {
		categories = room.Settings.Categories
	}

	impostorCount := config.ImpostorCount
	if impostorCount == 0 {
		impostorCount = room.Settings.ImpostorCount
	}

	matchConfig := entity.NewMatchConfig(len(room.Players), impostorCount, categories...)
	if config.ImpostorCount == 0 {
		// the room default was chosen for a full room
		matchConfig.SetPlayerCount(len(room.Players))
	}

	if err = matchConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to validate game config: %w", err)
	}

	category, word, err := impostor.SelectWord(that.src, matchConfig.Categories, that.lists)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select word: %w", err)
	}

	roles, err := impostor.AssignRoles(that.src, matchConfig.PlayerCount, matchConfig.ImpostorCount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to assign roles: %w", err)
	}

	room.Settings.Categories = matchConfig.Categories
	room.Settings.ImpostorCount = matchConfig.ImpostorCount
	room.BeginRound(category, word, roles)

	if err = that.updateRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	cards := make(map[string]entity.Card, len(room.Players))
	for _, player := range room.Players {
		cards[player.ID] = room.CardFor(player.ID)
	}

	log.Info("game started", "room", code, "round", room.Round, "players", len(room.Players),
		"impostors", matchConfig.ImpostorCount, "category", category)

	return room, cards, nil
}

// MarkReady records that the player has seen their card. The debate starts once everyone has.
func (that *RoomManager) MarkReady(ctx context.Context, code, playerID string) (*entity.Room, bool, error) {
	code = pkg.NormalizeRoomCode(code)

	unlock := that.locks.Lock(code)
	defer unlock()

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, false, err
	}

	if room.Status != entity.StatusRevealing {
		return nil, false, statusError("mark ready", room)
	}

	if room.FindPlayer(playerID) == nil {
		return nil, false, apperror.ErrPlayerNotFound
	}

	room.Ready[playerID] = true
	progress := that.advance(room)

	if err = that.updateRoom(ctx, room); err != nil {
		return nil, false, err
	}

	return room, progress.DebateStarted, nil
}

func (that *RoomManager) OpenVoting(ctx context.Context, code, playerID string) (*entity.Room, error) {
	log := that.logger.With("method", "OpenVoting")

	code = pkg.NormalizeRoomCode(code)

	unlock := that.locks.Lock(code)
	defer unlock()

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if !room.IsHost(playerID) {
		return nil, apperror.ErrNotHost
	}

	if room.Status != entity.StatusDebating {
		return nil, statusError("open voting", room)
	}

	room.Status = entity.StatusVoting
	if err = that.updateRoom(ctx, room); err != nil {
		return nil, err
	}

	log.Info("voting opened", "room", code)

	return room, nil
}

// CastVote records one vote. The outcome is returned once every player has voted.
func (that *RoomManager) CastVote(
	ctx context.Context,
	code, voterID, targetID string,
) (*entity.Room, *entity.VoteOutcome, error) {
	code = pkg.NormalizeRoomCode(code)

	unlock := that.locks.Lock(code)
	defer unlock()

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if room.Status != entity.StatusVoting {
		return nil, nil, statusError("vote", room)
	}

	if room.FindPlayer(voterID) == nil {
		return nil, nil, apperror.ErrPlayerNotFound
	}

	if _, voted := room.Votes[voterID]; voted {
		return nil, nil, apperror.ErrAlreadyVoted
	}

	if voterID == targetID || room.FindPlayer(targetID) == nil {
		return nil, nil, fmt.Errorf("%w: %s", apperror.ErrInvalidVote, targetID)
	}

	room.Votes[voterID] = targetID
	progress := that.advance(room)

	if err = that.updateRoom(ctx, room); err != nil {
		return nil, nil, err
	}

	return room, progress.Outcome, nil
}

// LeaveRoom removes the player. The returned room is nil when the last player left and the
// room was deleted.
func (that *RoomManager) LeaveRoom(ctx context.Context, code, playerID string) (*entity.Room, Progress, error) {
	log := that.logger.With("method", "LeaveRoom")

	code = pkg.NormalizeRoomCode(code)

	unlock := that.locks.Lock(code)
	defer unlock()

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, Progress{}, err
	}

	impostorLeft := room.Roles[playerID].IsImpostor()

	if !room.RemovePlayer(playerID) {
		return nil, Progress{}, apperror.ErrPlayerNotFound
	}

	if err = that.playerRepo.DeleteByID(ctx, playerID); err != nil {
		log.Error("failed to delete player", "player", playerID, "error", err)
	}

	if len(room.Players) == 0 {
		if err = that.roomRepo.DeleteByCode(ctx, code); err != nil {
			return nil, Progress{}, fmt.Errorf("failed to delete room: %w", err)
		}

		log.Info("room deleted", "room", code)

		return nil, Progress{}, nil
	}

	var progress Progress
	if room.InRound() && roundBroken(room, impostorLeft) {
		room.ResetRound()
		log.Info("round cancelled", "room", code, "players", len(room.Players), "impostor_left", impostorLeft)
	} else {
		progress = that.advance(room)
	}

	if err = that.updateRoom(ctx, room); err != nil {
		return nil, Progress{}, err
	}

	log.Info("player left", "room", code, "player", playerID, "host", room.HostID)

	return room, progress, nil
}

// roundBroken reports whether a round can no longer be played fairly after a player left.
func roundBroken(room *entity.Room, impostorLeft bool) bool {
	if impostorLeft || len(room.Players) < entity.MinPlayers {
		return true
	}

	return len(room.ImpostorIDs()) > entity.MaxImpostors(len(room.Players))
}

func (that *RoomManager) GetRoom(ctx context.Context, code string) (*entity.Room, error) {
	return that.getRoom(ctx, pkg.NormalizeRoomCode(code))
}

// GetPlayer resolves a player id to the player and the room they are in.
func (that *RoomManager) GetPlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *RoomManager) confirmCategories(categories []string) error {
	for _, category := range categories {
		words, ok := that.lists.Words(category)
		if !ok || len(words) == 0 {
			return fmt.Errorf("%w: unknown category %q", apperror.ErrInvalidConfig, category)
		}
	}

	return nil
}

// advance moves the round forward when the last ready or vote came in.
func (that *RoomManager) advance(room *entity.Room) Progress {
	var progress Progress

	switch room.Status {
	case entity.StatusRevealing:
		if room.AllReady() {
			room.Status = entity.StatusDebating
			progress.DebateStarted = true
		}
	case entity.StatusVoting:
		if room.AllVoted() {
			progress.Outcome = room.Tally()
			room.Status = entity.StatusFinished

			that.logger.Info("round finished", "room", room.Code, "winner", progress.Outcome.Winner,
				"ejected", progress.Outcome.EjectedID)
		}
	}

	return progress
}

func (that *RoomManager) freeRoomCode(ctx context.Context) (string, error) {
	for range roomCodeAttempts {
		code := pkg.GenerateRoomCode(that.src, that.codeLength)

		exists, err := that.roomRepo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check room code: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", ErrNoFreeRoomCode
}

func (that *RoomManager) getRoom(ctx context.Context, code string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

func (that *RoomManager) updateRoom(ctx context.Context, room *entity.Room) error {
	if err := that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	return nil
}

func (that *RoomManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

func validateNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)

	if nickname == "" {
		return "", fmt.Errorf("%w: nickname is empty", apperror.ErrInvalidNickname)
	}

	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return "", fmt.Errorf("%w: at most %d characters", apperror.ErrInvalidNickname, maxNicknameLength)
	}

	return nickname, nil
}

func statusError(action string, room *entity.Room) error {
	return fmt.Errorf("%w: cannot %s while room is %s", apperror.ErrInvalidTransition, action, room.Status)
}
