package bstable

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// UniqueIDTemplate is the shape of the IDs returned by GenerateUniqueID.
// Every x is replaced by a hex digit, y by one of 8, 9, a or b.
const UniqueIDTemplate = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"

const hexDigits = "0123456789abcdef"

// KeyGenerator returns a new unique row key.
type KeyGenerator func() string

var (
	_ KeyGenerator = GenerateUniqueID
	_ KeyGenerator = UUIDv4
)

// GenerateUniqueID returns a random ID for rows without natural key.
// The current time is mixed with random bits and formatted
// like UniqueIDTemplate. The result looks like a version 4 UUID
// but is not guaranteed to be a conformant one, use UUIDv4 for that.
func GenerateUniqueID() string {
	d := uint64(time.Now().UnixNano())
	id := []byte(UniqueIDTemplate)
	for i, c := range id {
		if c != 'x' && c != 'y' {
			continue
		}
		r := (d + rand.Uint64N(16)) % 16
		d /= 16
		if c == 'y' {
			r = r&0x3 | 0x8
		}
		id[i] = hexDigits[r]
	}
	return string(id)
}

// UUIDv4 returns a random RFC 4122 version 4 UUID string.
func UUIDv4() string {
	return uuid.NewString()
}
