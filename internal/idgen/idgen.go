// Package idgen produces the random identifiers used both for short
// codes and for user IDs. The two identifier spaces share the same
// alphabet and length and are not distinguishable by format.
package idgen

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Length is the number of characters in every generated identifier.
// 62^6 gives roughly 56.8 billion combinations.
const Length = 6

// New returns a fresh identifier drawn uniformly at random from the
// alphanumeric alphabet. No uniqueness is guaranteed; callers that need
// a free identifier must check against their store and retry.
func New() string {
	result := make([]byte, Length)
	for i := range result {
		randomIndex, _ := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		result[i] = alphabet[randomIndex.Int64()]
	}

	return string(result)
}
