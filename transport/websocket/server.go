package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/rocketscienceinc/impostor-backend/internal/usecase"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	writeWait      = 10 * time.Second
	maxMessageSize = 8 << 10
	shutdownWait   = 5 * time.Second
)

var (
	errNotInRoom     = errors.New("join or create a room first")
	errAlreadyInRoom = errors.New("already in a room")
	errBadPayload    = errors.New("malformed payload")
	errUnknownAction = errors.New("unknown action")
)

type roomManager interface {
	CreateRoom(ctx context.Context, nickname string, avatar json.RawMessage, settings entity.RoomSettings) (*entity.Room, *entity.Player, error)
	JoinRoom(ctx context.Context, code, nickname string, avatar json.RawMessage) (*entity.Room, *entity.Player, error)
	StartGame(ctx context.Context, code, playerID string, config usecase.GameConfig) (*entity.Room, map[string]entity.Card, error)
	MarkReady(ctx context.Context, code, playerID string) (*entity.Room, bool, error)
	OpenVoting(ctx context.Context, code, playerID string) (*entity.Room, error)
	CastVote(ctx context.Context, code, voterID, targetID string) (*entity.Room, *entity.VoteOutcome, error)
	LeaveRoom(ctx context.Context, code, playerID string) (*entity.Room, usecase.Progress, error)
}

// session is the state of one connection. Only its read loop touches it.
type session struct {
	out      *client
	playerID string
	roomCode string
}

func (that *session) inRoom() bool {
	return that.playerID != ""
}

type handlerFunc func(ctx context.Context, sess *session, payload json.RawMessage) error

type Server struct {
	logger   *slog.Logger
	rooms    roomManager
	hub      *Hub
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		rooms:  rooms,
		hub:    NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}

	server.handlers = map[string]handlerFunc{
		actionCreateRoom:  server.handleCreateRoom,
		actionJoinRoom:    server.handleJoinRoom,
		actionStartGame:   server.handleStartGame,
		actionPlayerReady: server.handlePlayerReady,
		actionOpenVoting:  server.handleOpenVoting,
		actionCastVote:    server.handleCastVote,
		actionLeaveRoom:   server.handleLeaveRoom,
	}

	return server
}

// Handler - routes the websocket endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	router := httprouter.New()
	router.GET("/ws", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		that.serveWebSocket(ctx, w, r)
	})

	return router
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go that.keepAlive(conn, done)

	sess := &session{out: newClient(conn)}
	that.handleMessages(ctx, conn, sess)

	if sess.inRoom() {
		that.disconnect(ctx, sess)
	}
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sess *session) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				that.reply(sess, eventError, newErrorResponse("", errBadPayload))
				continue
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "player", sess.playerID, "error", err)
			}

			return
		}

		that.dispatch(ctx, sess, message)
	}
}

func (that *Server) dispatch(ctx context.Context, sess *session, message Message) {
	log := that.logger.With("method", "dispatch", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.reply(sess, eventError, newErrorResponse(message.Action, errUnknownAction))
		return
	}

	if err := handler(ctx, sess, message.Payload); err != nil {
		log.Info("action rejected", "player", sess.playerID, "error", err)
		that.reply(sess, eventError, newErrorResponse(message.Action, err))
	}
}

func (that *Server) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// reply answers on the session connection, whether or not the player is in a room.
func (that *Server) reply(sess *session, action string, payload any) {
	msg, err := newMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to build reply", "action", action, "error", err)
		return
	}

	if err = sess.out.write(msg); err != nil {
		that.logger.Warn("failed to write reply", "action", action, "error", err)
	}
}
