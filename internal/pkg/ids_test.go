package pkg

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	// Given: a seeded source
	src := rand.New(rand.NewPCG(1, 2))

	for range 100 {
		// When: a code is generated
		code := GenerateRoomCode(src, 6)

		// Then: it has the requested length and only unambiguous characters
		require.Len(t, code, 6)
		for _, char := range code {
			require.True(t, strings.ContainsRune(RoomCodeAlphabet, char), "unexpected %q in %s", char, code)
		}
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "ABC234", NormalizeRoomCode("  abc234 "))
}

func TestGeneratePlayerID(t *testing.T) {
	first := GeneratePlayerID()
	second := GeneratePlayerID()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
