package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rocketscienceinc/impostor-backend/internal/dictionary"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
)

const shutdownWait = 5 * time.Second

type roomReader interface {
	GetRoom(ctx context.Context, code string) (*entity.Room, error)
	GetPlayer(ctx context.Context, playerID string) (*entity.Player, error)
}

type categoryLister interface {
	Categories() []dictionary.Category
}

type Server struct {
	logger     *slog.Logger
	rooms      roomReader
	categories categoryLister
	joinURL    func(roomCode string) string
}

// New - joinURL builds the link encoded in a room's QR code.
func New(logger *slog.Logger, rooms roomReader, categories categoryLister, joinURL func(string) string) *Server {
	return &Server{
		logger:     logger.With("component", "rest"),
		rooms:      rooms,
		categories: categories,
		joinURL:    joinURL,
	}
}

func (that *Server) Handler() http.Handler {
	router := httprouter.New()

	router.GET("/ping", that.handlePing)
	router.GET("/categories", that.handleCategories)
	router.GET("/rooms/:code", that.handleRoom)
	router.GET("/rooms/:code/qr", that.handleRoomQR)
	router.GET("/players/:id", that.handlePlayer)

	return router
}

// Start - starts the HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
