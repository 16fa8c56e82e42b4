// Package idgen generates short random identifiers for object keys.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is safe in S3 keys and URLs and sorts the same in every locale.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Length is the number of random characters in an ID.
const Length = 12

// Generate returns a new random ID.
func Generate() (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}

// WithPrefix returns prefix followed by a new random ID.
func WithPrefix(prefix string) (string, error) {
	id, err := Generate()
	if err != nil {
		return "", err
	}
	return prefix + id, nil
}
