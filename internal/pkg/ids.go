package pkg

import (
	"strings"

	"github.com/google/uuid"
)

// RoomCodeAlphabet leaves out characters that are easy to confuse when read aloud or typed: 0/O, 1/I.
const RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type intner interface {
	IntN(n int) int
}

// GenerateRoomCode - returns a short human-typeable room code.
func GenerateRoomCode(src intner, length int) string {
	var code strings.Builder
	code.Grow(length)

	for range length {
		code.WriteByte(RoomCodeAlphabet[src.IntN(len(RoomCodeAlphabet))])
	}

	return code.String()
}

// NormalizeRoomCode - codes are typed by people, so case and surrounding spaces do not matter.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GeneratePlayerID - returns a new random player id.
func GeneratePlayerID() string {
	return uuid.NewString()
}
