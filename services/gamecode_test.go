package services

import (
	"strings"
	"testing"

	"flashdeck/models"

	"github.com/stretchr/testify/require"
)

func TestRandomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := RandomCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			require.Contains(t, codeAlphabet, string(r))
		}
		seen[code] = true
	}
	// 100 draws from a 32^6 space should never all collide
	require.Greater(t, len(seen), 1)
}

func TestCodeAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, c := range "0O1I" {
		require.NotContains(t, codeAlphabet, string(c))
	}
}

func TestNormalizeCode(t *testing.T) {
	require.Equal(t, "ABC234", NormalizeCode("  abc234 "))
	require.Equal(t, "ABC234", NormalizeCode("ABC234"))
}

func TestDuplicateActiveCodeRejected(t *testing.T) {
	store := newFakeStore()

	first := &models.Game{GameID: "g-1", Code: "AAAAAA", Status: models.GameStatusWaiting}
	require.NoError(t, store.CreateGame(first))

	// A second active game may never carry the same code
	err := store.CreateGame(&models.Game{GameID: "g-2", Code: "AAAAAA", Status: models.GameStatusWaiting})
	require.Error(t, err)

	// Completion frees the code for a new game
	require.NoError(t, store.UpdateGame("g-1", map[string]interface{}{
		"status": models.GameStatusCompleted,
	}))
	require.NoError(t, store.CreateGame(&models.Game{GameID: "g-3", Code: "AAAAAA", Status: models.GameStatusWaiting}))
}

func TestUniqueCodeAvoidsActiveCollisions(t *testing.T) {
	store := newFakeStore()
	store.games["g-1"] = &models.Game{
		ID:     1,
		GameID: "g-1",
		Code:   "AAAAAA",
		Status: models.GameStatusWaiting,
	}

	for i := 0; i < 50; i++ {
		code, err := uniqueCode(store)
		require.NoError(t, err)
		require.NotEqual(t, "AAAAAA", code)
		require.Len(t, code, CodeLength)
		require.Equal(t, strings.ToUpper(code), code)
	}
}
