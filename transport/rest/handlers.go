package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type categoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	WordCount int    `json:"word_count"`
}

type playerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RoomCode string `json:"room_code"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleCategories(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	categories := that.categories.Categories()

	resp := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, categoryResponse{
			ID:        category.ID,
			Name:      category.Name,
			Icon:      category.Icon,
			WordCount: len(category.Words),
		})
	}

	that.writeJSON(w, http.StatusOK, resp)
}

// handleRoom returns the public summary, never the word or the roles.
func (that *Server) handleRoom(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	room, err := that.rooms.GetRoom(r.Context(), params.ByName("code"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, room.Summary())
}

func (that *Server) handleRoomQR(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	log := that.logger.With("method", "handleRoomQR")

	room, err := that.rooms.GetRoom(r.Context(), params.ByName("code"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	png, err := qrcode.Encode(that.joinURL(room.Code), qrcode.Medium, qrSize)
	if err != nil {
		log.Error("failed to encode qr code", "room", room.Code, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(png); err != nil {
		log.Warn("failed to write qr code", "error", err)
	}
}

// handlePlayer looks up a player who is currently seated in a room.
// Leaving or disconnecting removes the record, so only live players are found.
func (that *Server) handlePlayer(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	player, err := that.rooms.GetPlayer(r.Context(), params.ByName("id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, playerResponse{
		ID:       player.ID,
		Name:     player.Name,
		RoomCode: player.RoomCode,
	})
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		that.writeJSON(w, http.StatusNotFound, map[string]string{"error": apperror.ErrRoomNotFound.Error()})
	case errors.Is(err, apperror.ErrPlayerNotFound):
		that.writeJSON(w, http.StatusNotFound, map[string]string{"error": apperror.ErrPlayerNotFound.Error()})
	default:
		that.logger.Error("request failed", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Warn("failed to write response", "error", err)
	}
}
