package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/impostor-backend/internal/dictionary"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/rocketscienceinc/impostor-backend/internal/impostor"
	"github.com/rocketscienceinc/impostor-backend/internal/repository"
	"github.com/rocketscienceinc/impostor-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rooms := usecase.NewRoomManager(
		logger,
		repository.NewMemoryPlayerRepository(),
		repository.NewMemoryRoomRepository(),
		dictionary.FromMap(map[string][]string{"animales": {"Panda", "Jirafa"}}),
		impostor.NewSeededSource(7),
		usecase.RoomManagerOptions{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	httpServer := httptest.NewServer(New(logger, rooms).Handler(ctx))
	t.Cleanup(func() {
		cancel()
		httpServer.Close()
	})

	return "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))
}

// expect skips unrelated events until the wanted one arrives and decodes its payload.
func expect(t *testing.T, conn *websocket.Conn, action string, out any) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", action)

		if msg.Action == eventError && action != eventError {
			t.Fatalf("unexpected error while waiting for %s: %s", action, msg.Payload)
		}

		if msg.Action != action {
			continue
		}

		if out != nil {
			require.NoError(t, json.Unmarshal(msg.Payload, out))
		}

		return
	}
}

func TestServer_FullRound(t *testing.T) {
	url := newTestServer(t)

	// Given: a host and two players in one room
	host := dial(t, url)
	send(t, host, actionCreateRoom, map[string]any{
		"nickname": "Ana",
		"settings": map[string]any{"categories": []string{"animales"}, "maxPlayers": 6},
	})

	var created roomResponse
	expect(t, host, eventRoomCreated, &created)
	require.Len(t, created.RoomCode, 6)
	require.Equal(t, created.PlayerID, created.Room.HostID)

	conns := map[string]*websocket.Conn{created.PlayerID: host}
	for _, name := range []string{"Luis", "Eva"} {
		conn := dial(t, url)
		send(t, conn, actionJoinRoom, map[string]any{"roomCode": strings.ToLower(created.RoomCode), "nickname": name})

		var joined roomResponse
		expect(t, conn, eventRoomJoined, &joined)
		conns[joined.PlayerID] = conn
	}

	var roster rosterResponse
	expect(t, host, eventRosterUpdated, &roster)
	if len(roster.Players) < 3 {
		expect(t, host, eventRosterUpdated, &roster)
	}
	require.Len(t, roster.Players, 3)
	assert.Equal(t, 3, roster.RosterVersion)

	// When: the host starts the game
	send(t, host, actionStartGame, map[string]any{"config": map[string]any{"impostors": 1}})

	// Then: every player gets only their own card
	impostors := 0
	for id, conn := range conns {
		var started gameStartedResponse
		expect(t, conn, eventGameStarted, &started)

		assert.Equal(t, id, started.Card.PlayerID)
		assert.Equal(t, 1, started.Round)
		if started.Card.Role.IsImpostor() {
			impostors++
			assert.Equal(t, entity.MaskedWord, started.Card.Word)
		} else {
			assert.Contains(t, []string{"Panda", "Jirafa"}, started.Card.Word)
		}
	}
	assert.Equal(t, 1, impostors)

	// When: everyone has seen their card
	for _, conn := range conns {
		send(t, conn, actionPlayerReady, nil)
	}

	// Then: the debate starts for everyone
	for _, conn := range conns {
		expect(t, conn, eventDebateStarted, nil)
	}

	// When: the host opens the vote and everyone votes for the host, who votes for someone else
	send(t, host, actionOpenVoting, nil)
	for _, conn := range conns {
		expect(t, conn, eventVotingStarted, nil)
	}

	var other string
	for id := range conns {
		if id != created.PlayerID {
			other = id
			break
		}
	}

	for id, conn := range conns {
		target := created.PlayerID
		if id == created.PlayerID {
			target = other
		}
		send(t, conn, actionCastVote, map[string]any{"targetId": target})
	}

	// Then: everybody sees the same results
	for _, conn := range conns {
		var outcome entity.VoteOutcome
		expect(t, conn, eventVotingResults, &outcome)

		assert.Equal(t, created.PlayerID, outcome.EjectedID)
		assert.Len(t, outcome.ImpostorIDs, 1)
		assert.NotEmpty(t, outcome.SecretWord)
	}
}

func TestServer_Errors(t *testing.T) {
	url := newTestServer(t)

	t.Run("Unknown action", func(t *testing.T) {
		conn := dial(t, url)
		send(t, conn, "fly", nil)

		var resp errorResponse
		expect(t, conn, eventError, &resp)
		assert.Equal(t, "unknown_action", resp.Code)
		assert.Equal(t, "fly", resp.Action)
	})

	t.Run("Action before joining a room", func(t *testing.T) {
		conn := dial(t, url)
		send(t, conn, actionStartGame, nil)

		var resp errorResponse
		expect(t, conn, eventError, &resp)
		assert.Equal(t, "not_in_room", resp.Code)
	})

	t.Run("Unknown room", func(t *testing.T) {
		conn := dial(t, url)
		send(t, conn, actionJoinRoom, map[string]any{"roomCode": "ZZZZZZ", "nickname": "Ana"})

		var resp errorResponse
		expect(t, conn, eventError, &resp)
		assert.Equal(t, "room_not_found", resp.Code)
	})

	t.Run("Malformed frame keeps the connection open", func(t *testing.T) {
		conn := dial(t, url)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		var resp errorResponse
		expect(t, conn, eventError, &resp)
		assert.Equal(t, "bad_payload", resp.Code)

		send(t, conn, "fly", nil)
		expect(t, conn, eventError, &resp)
		assert.Equal(t, "unknown_action", resp.Code)
	})
}

func TestServer_Disconnect(t *testing.T) {
	url := newTestServer(t)

	// Given: a host and a guest
	host := dial(t, url)
	send(t, host, actionCreateRoom, map[string]any{
		"nickname": "Ana",
		"settings": map[string]any{"categories": []string{"animales"}},
	})

	var created roomResponse
	expect(t, host, eventRoomCreated, &created)

	guest := dial(t, url)
	send(t, guest, actionJoinRoom, map[string]any{"roomCode": created.RoomCode, "nickname": "Luis"})

	var joined roomResponse
	expect(t, guest, eventRoomJoined, &joined)

	var roster rosterResponse
	expect(t, host, eventRosterUpdated, &roster)
	require.Len(t, roster.Players, 2)

	// When: the host drops the connection
	require.NoError(t, host.Close())

	// Then: the guest becomes host of a smaller roster
	expect(t, guest, eventRosterUpdated, &roster)
	require.Len(t, roster.Players, 1)
	assert.Equal(t, joined.PlayerID, roster.HostID)
}
