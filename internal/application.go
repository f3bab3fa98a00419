package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/impostor-backend/internal/config"
	"github.com/rocketscienceinc/impostor-backend/internal/dictionary"
	"github.com/rocketscienceinc/impostor-backend/internal/impostor"
	"github.com/rocketscienceinc/impostor-backend/internal/repository"
	"github.com/rocketscienceinc/impostor-backend/internal/repository/storage"
	"github.com/rocketscienceinc/impostor-backend/internal/usecase"
	"github.com/rocketscienceinc/impostor-backend/transport/rest"
	"github.com/rocketscienceinc/impostor-backend/transport/websocket"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownStorage = errors.New("unknown storage")
)

type repositories struct {
	players repository.PlayerRepository
	rooms   repository.RoomRepository
	close   func()
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	dict, err := LoadDictionary(conf.DictionaryPath)
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer repos.close()

	roomManager := usecase.NewRoomManager(logger, repos.players, repos.rooms, dict, impostor.DefaultSource,
		usecase.RoomManagerOptions{
			CodeLength:        conf.Game.RoomCodeLength,
			DefaultMaxPlayers: conf.Game.DefaultMaxPlayers,
		})

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, roomManager, dict, conf.JoinURL)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// LoadDictionary - returns the built-in dictionary unless a file is configured.
func LoadDictionary(path string) (*dictionary.Dictionary, error) {
	if path == "" {
		return dictionary.Default(), nil
	}

	dict, err := dictionary.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load dictionary: %w", err)
	}

	return dict, nil
}

func openRepositories(ctx context.Context, logger *slog.Logger, conf *config.Config) (*repositories, error) {
	log := logger.With("method", "openRepositories")

	switch conf.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, rooms are lost on restart")

		return &repositories{
			players: repository.NewMemoryPlayerRepository(),
			rooms:   repository.NewMemoryRoomRepository(),
			close:   func() {},
		}, nil
	case config.StorageRedis, "":
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return &repositories{
			players: repository.NewPlayerRepository(redisStorage.Connection, conf.Game.RoomTTL),
			rooms:   repository.NewRoomRepository(redisStorage.Connection, conf.Game.RoomTTL),
			close: func() {
				if err = redisStorage.Close(); err != nil {
					log.Error("could not close redis storage", "error", err)
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStorage, conf.Storage)
	}
}
