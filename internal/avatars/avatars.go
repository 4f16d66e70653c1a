// Package avatars is the fixed set of profile pictures a kid can pick from.
package avatars

import (
	"crypto/rand"
	"math/big"
)

// catalog lists the avatar keys the clients ship artwork for
var catalog = []string{
	"bear", "cat", "dolphin", "dragon", "fox", "lion",
	"owl", "panda", "penguin", "rabbit", "robot", "unicorn",
}

// All returns the avatar keys in display order
func All() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether key names a known avatar
func Valid(key string) bool {
	for _, a := range catalog {
		if a == key {
			return true
		}
	}
	return false
}

// Random picks an avatar for a profile created without one
func Random() (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(catalog))))
	if err != nil {
		return "", err
	}
	return catalog[num.Int64()], nil
}
