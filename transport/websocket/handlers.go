package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/rocketscienceinc/impostor-backend/internal/usecase"
)

func decode(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %w", errBadPayload, err)
	}

	return nil
}

func (that *Server) handleCreateRoom(ctx context.Context, sess *session, payload json.RawMessage) error {
	log := that.logger.With("method", "handleCreateRoom")

	if sess.inRoom() {
		return errAlreadyInRoom
	}

	var req createRoomRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	settings := entity.RoomSettings{
		Categories:    req.Settings.Categories,
		MaxPlayers:    req.Settings.MaxPlayers,
		ImpostorCount: req.Settings.ImpostorCount,
	}

	room, host, err := that.rooms.CreateRoom(ctx, req.Nickname, req.AvatarConfig, settings)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.enter(sess, room, host)
	that.hub.Send(host.ID, eventRoomCreated, roomResponse{
		RoomCode: room.Code,
		PlayerID: host.ID,
		Room:     room.Summary(),
	})

	log.Info("room created", "room", room.Code, "player", host.ID)

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, sess *session, payload json.RawMessage) error {
	if sess.inRoom() {
		return errAlreadyInRoom
	}

	var req joinRoomRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	room, player, err := that.rooms.JoinRoom(ctx, req.RoomCode, req.Nickname, req.AvatarConfig)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	that.enter(sess, room, player)
	that.hub.Send(player.ID, eventRoomJoined, roomResponse{
		RoomCode: room.Code,
		PlayerID: player.ID,
		Room:     room.Summary(),
	})
	that.hub.BroadcastRoster(room)

	return nil
}

// handleStartGame sends every player their own card and nobody else's.
func (that *Server) handleStartGame(ctx context.Context, sess *session, payload json.RawMessage) error {
	if !sess.inRoom() {
		return errNotInRoom
	}

	var req startGameRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	room, cards, err := that.rooms.StartGame(ctx, sess.roomCode, sess.playerID, req.Config)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	for _, player := range room.Players {
		that.hub.Send(player.ID, eventGameStarted, gameStartedResponse{
			RoomCode: room.Code,
			Round:    room.Round,
			Card:     cards[player.ID],
		})
	}

	return nil
}

func (that *Server) handlePlayerReady(ctx context.Context, sess *session, _ json.RawMessage) error {
	if !sess.inRoom() {
		return errNotInRoom
	}

	room, debateStarted, err := that.rooms.MarkReady(ctx, sess.roomCode, sess.playerID)
	if err != nil {
		return fmt.Errorf("failed to mark ready: %w", err)
	}

	if debateStarted {
		that.hub.Broadcast(room, eventDebateStarted, phaseResponse{RoomCode: room.Code})
	}

	return nil
}

func (that *Server) handleOpenVoting(ctx context.Context, sess *session, _ json.RawMessage) error {
	if !sess.inRoom() {
		return errNotInRoom
	}

	room, err := that.rooms.OpenVoting(ctx, sess.roomCode, sess.playerID)
	if err != nil {
		return fmt.Errorf("failed to open voting: %w", err)
	}

	that.hub.Broadcast(room, eventVotingStarted, phaseResponse{RoomCode: room.Code, Players: room.Players})

	return nil
}

func (that *Server) handleCastVote(ctx context.Context, sess *session, payload json.RawMessage) error {
	if !sess.inRoom() {
		return errNotInRoom
	}

	var req castVoteRequest
	if err := decode(payload, &req); err != nil {
		return err
	}

	room, outcome, err := that.rooms.CastVote(ctx, sess.roomCode, sess.playerID, req.TargetID)
	if err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}

	that.hub.Broadcast(room, eventVoteRecorded, voteRecordedResponse{
		RoomCode: room.Code,
		Voted:    len(room.Votes),
		Total:    len(room.Players),
	})

	if outcome != nil {
		that.hub.Broadcast(room, eventVotingResults, outcome)
	}

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, sess *session, _ json.RawMessage) error {
	if !sess.inRoom() {
		return errNotInRoom
	}

	roomCode := sess.roomCode
	if err := that.leave(ctx, sess); err != nil {
		return err
	}

	that.reply(sess, eventRoomLeft, phaseResponse{RoomCode: roomCode})

	return nil
}

// disconnect treats a dropped connection as leaving the room.
func (that *Server) disconnect(ctx context.Context, sess *session) {
	log := that.logger.With("method", "disconnect")

	if err := that.leave(ctx, sess); err != nil {
		log.Error("failed to leave room on disconnect", "player", sess.playerID, "error", err)
	}
}

func (that *Server) enter(sess *session, room *entity.Room, player *entity.Player) {
	sess.playerID = player.ID
	sess.roomCode = room.Code

	that.hub.Register(player.ID, sess.out)
	that.hub.MarkRoster(player.ID, room.RosterVersion)
}

func (that *Server) leave(ctx context.Context, sess *session) error {
	playerID := sess.playerID

	that.hub.Unregister(playerID, sess.out)
	room, progress, err := that.rooms.LeaveRoom(ctx, sess.roomCode, playerID)

	sess.playerID = ""
	sess.roomCode = ""

	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if room == nil {
		return nil
	}

	that.hub.BroadcastRoster(room)
	that.broadcastProgress(room, progress)

	return nil
}

func (that *Server) broadcastProgress(room *entity.Room, progress usecase.Progress) {
	if progress.DebateStarted {
		that.hub.Broadcast(room, eventDebateStarted, phaseResponse{RoomCode: room.Code})
	}

	if progress.Outcome != nil {
		that.hub.Broadcast(room, eventVotingResults, progress.Outcome)
	}
}
