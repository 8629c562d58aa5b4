package commands

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
)

// randomCode draws each position independently from the alphabet using
// crypto/rand; codes must not be guessable from prior codes.
func randomCode(length int, alphabet string) (string, error) {
	if length <= 0 {
		length = entities.DefaultCodeLength
	}
	if alphabet == "" {
		alphabet = entities.DefaultCodeAlphabet
	}
	max := big.NewInt(int64(len(alphabet)))
	code := make([]byte, length)
	for i := range code {
		index, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw code digit: %w", err)
		}
		code[i] = alphabet[index.Int64()]
	}
	return string(code), nil
}
