// services/gamecode.go - Join Code Generation
package services

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// CodeLength is the fixed length of a join code.
const CodeLength = 6

// codeAlphabet deliberately omits 0/O and 1/I to keep codes easy to
// read back over a shoulder.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxCodeAttempts bounds collision retries against active games.
const maxCodeAttempts = 10

// RandomCode returns a fresh 6-character join code.
func RandomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	var sb strings.Builder
	for _, b := range buf {
		sb.WriteByte(codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return sb.String(), nil
}

// NormalizeCode folds user input into canonical code form. Codes are
// case-insensitive on entry.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// uniqueCode generates a code that no active game is currently using.
func uniqueCode(store GameStore) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := RandomCode()
		if err != nil {
			return "", err
		}
		inUse, err := store.CodeInUse(code)
		if err != nil {
			return "", wrapPersistence("code lookup", err)
		}
		if !inUse {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find a free join code after %d attempts", maxCodeAttempts)
}
