package likes

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// DefaultAddress stands in for the client address when none is known, for
// example when a request carries no forwarding header.
const DefaultAddress = "0.0.0.0"

const sessionSeparator = "___"

// ErrMissingSalt is returned when an Identifier is built without a salt.
var ErrMissingSalt = errors.New("likes: session salt is required")

// Identifier derives pseudo-anonymous session ids. It is safe for concurrent
// use and performs no I/O.
type Identifier struct {
	salt           []byte
	defaultAddress string
}

// NewIdentifier creates an Identifier keyed by salt, which must be between 1
// and 64 bytes. defaultAddress replaces empty client addresses; if it is empty,
// DefaultAddress is used.
func NewIdentifier(salt, defaultAddress string) (*Identifier, error) {
	if salt == "" {
		return nil, ErrMissingSalt
	}
	if len(salt) > blake2b.Size {
		return nil, fmt.Errorf("likes: session salt longer than %d bytes", blake2b.Size)
	}
	if defaultAddress == "" {
		defaultAddress = DefaultAddress
	}
	return &Identifier{salt: []byte(salt), defaultAddress: defaultAddress}, nil
}

// Identify returns the session id for a client on an item. The id is the item
// key followed by a keyed BLAKE2b-256 digest of the client address, so the
// same client and item always map to the same id, ids for different items
// never collide, and the address cannot be read back out of the id.
func (id *Identifier) Identify(itemKey, clientAddress string) (string, error) {
	if itemKey == "" {
		return "", &InputError{Field: "itemKey", Reason: "must not be empty"}
	}
	if clientAddress == "" {
		clientAddress = id.defaultAddress
	}

	// Key length was checked in NewIdentifier.
	h, _ := blake2b.New256(id.salt)
	h.Write([]byte(clientAddress))

	return itemKey + sessionSeparator + hex.EncodeToString(h.Sum(nil)), nil
}
