// Package shortid generates opaque short identifiers.
package shortid

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

const idBytes = 6

// New returns a fresh opaque identifier. Ids are random, not ordered, and
// the id space is large enough that collisions are treated as never
// occurring by callers.
func New() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		// The OS entropy source failing is the only error path; a
		// timestamp-derived id keeps the relay running rather than
		// aborting a live conversation.
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}
