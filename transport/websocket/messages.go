package websocket

import (
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/rocketscienceinc/impostor-backend/internal/usecase"
)

// Inbound actions.
const (
	actionCreateRoom  = "create_room"
	actionJoinRoom    = "join_room"
	actionStartGame   = "start_game"
	actionPlayerReady = "player_ready"
	actionOpenVoting  = "open_voting"
	actionCastVote    = "cast_vote"
	actionLeaveRoom   = "leave_room"
)

// Outbound events.
const (
	eventRoomCreated   = "room_created"
	eventRoomJoined    = "room_joined"
	eventRoomLeft      = "room_left"
	eventRosterUpdated = "roster_updated"
	eventGameStarted   = "game_started"
	eventDebateStarted = "debate_started"
	eventVotingStarted = "voting_started"
	eventVoteRecorded  = "vote_recorded"
	eventVotingResults = "voting_results"
	eventError         = "error"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type createRoomRequest struct {
	Nickname     string          `json:"nickname"`
	AvatarConfig json.RawMessage `json:"avatarConfig,omitempty"`
	Settings     struct {
		Categories    []string `json:"categories"`
		MaxPlayers    int      `json:"maxPlayers"`
		ImpostorCount int      `json:"impostors"`
	} `json:"settings"`
}

type joinRoomRequest struct {
	RoomCode     string          `json:"roomCode"`
	Nickname     string          `json:"nickname"`
	AvatarConfig json.RawMessage `json:"avatarConfig,omitempty"`
}

type startGameRequest struct {
	RoomCode string             `json:"roomCode"`
	Config   usecase.GameConfig `json:"config"`
}

type castVoteRequest struct {
	TargetID string `json:"targetId"`
}

type roomResponse struct {
	RoomCode string             `json:"roomCode"`
	PlayerID string             `json:"playerId"`
	Room     entity.RoomSummary `json:"room"`
}

type rosterResponse struct {
	RoomCode      string           `json:"roomCode"`
	HostID        string           `json:"hostId"`
	Status        string           `json:"status"`
	Players       []*entity.Player `json:"players"`
	RosterVersion int              `json:"rosterVersion"`
}

type gameStartedResponse struct {
	RoomCode string      `json:"roomCode"`
	Round    int         `json:"round"`
	Card     entity.Card `json:"card"`
}

type phaseResponse struct {
	RoomCode string           `json:"roomCode"`
	Players  []*entity.Player `json:"players,omitempty"`
}

type voteRecordedResponse struct {
	RoomCode string `json:"roomCode"`
	Voted    int    `json:"voted"`
	Total    int    `json:"total"`
}

type errorResponse struct {
	Action string `json:"action"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

func newRosterResponse(room *entity.Room) rosterResponse {
	return rosterResponse{
		RoomCode:      room.Code,
		HostID:        room.HostID,
		Status:        room.Status,
		Players:       room.Players,
		RosterVersion: room.RosterVersion,
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{apperror.ErrRoomNotFound, "room_not_found"},
	{apperror.ErrRoomFull, "room_full"},
	{apperror.ErrGameAlreadyStarted, "game_already_started"},
	{apperror.ErrGameIsNotStarted, "game_not_started"},
	{apperror.ErrNotHost, "not_host"},
	{apperror.ErrNicknameTaken, "nickname_taken"},
	{apperror.ErrInvalidNickname, "invalid_nickname"},
	{apperror.ErrPlayerNotFound, "player_not_found"},
	{apperror.ErrAlreadyVoted, "already_voted"},
	{apperror.ErrInvalidVote, "invalid_vote"},
	{apperror.ErrInvalidConfig, "invalid_config"},
	{apperror.ErrInvalidTransition, "invalid_action"},
	{errNotInRoom, "not_in_room"},
	{errAlreadyInRoom, "already_in_room"},
	{errBadPayload, "bad_payload"},
	{errUnknownAction, "unknown_action"},
}

// newErrorResponse exposes only known failures. Anything else is reported as internal.
func newErrorResponse(action string, err error) errorResponse {
	for _, known := range errorCodes {
		if errors.Is(err, known.err) {
			return errorResponse{Action: action, Code: known.code, Error: known.err.Error()}
		}
	}

	return errorResponse{Action: action, Code: "internal", Error: "internal server error"}
}
