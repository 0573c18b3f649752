// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// alphanumeric is the alphabet for generated token values and filenames.
const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns a random alphanumeric string of the given length.
//
// The output is drawn from crypto/rand. Callers own uniqueness: every consumer
// re-checks the generated value against current storage state and redraws on
// collision rather than assuming collisions away.
func RandomString(length int) (string, error) {
	buffer := make([]byte, length)
	alphabetSize := big.NewInt(int64(len(alphanumeric)))

	for i := range buffer {
		index, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("sec: failed to draw random index: %w", err)
		}
		buffer[i] = alphanumeric[index.Int64()]
	}

	return string(buffer), nil
}
