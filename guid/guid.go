package guid

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Size is the length of a GUID in bytes.
const Size = 16

// ErrInvalidGUID is returned for malformed textual or binary GUIDs.
var ErrInvalidGUID = errors.New("invalid guid")

// GUID is a 128-bit globally unique identifier stored in RFC 4122 byte order.
type GUID struct {
	u uuid.UUID
}

// Nil is the all-zero GUID.
var Nil = GUID{}

// New returns a random (version 4) GUID.
func New() GUID {
	return GUID{u: uuid.New()}
}

// Parse accepts xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx, the braced
// {xxxxxxxx-...} form, urn:uuid: prefixes and the 32-digit unhyphenated form.
func Parse(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("%w: %v", ErrInvalidGUID, err)
	}
	return GUID{u: u}, nil
}

// MustParse is Parse for constants; it panics on error.
func MustParse(s string) GUID {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// FromBytes wraps 16 bytes in RFC 4122 order.
func FromBytes(b []byte) (GUID, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return Nil, fmt.Errorf("%w: %v", ErrInvalidGUID, err)
	}
	return GUID{u: u}, nil
}

// FromNDR decodes the NDR wire layout, where time_low, time_mid and
// time_hi_and_version are little-endian.
func FromNDR(b []byte) (GUID, error) {
	if len(b) != Size {
		return Nil, fmt.Errorf("%w: ndr guid must be %d bytes, got %d", ErrInvalidGUID, Size, len(b))
	}
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(u[8:], b[8:])
	return GUID{u: u}, nil
}

// NDR returns the NDR wire layout.
func (g GUID) NDR() []byte {
	out := make([]byte, Size)
	binary.LittleEndian.PutUint32(out[0:4], binary.BigEndian.Uint32(g.u[0:4]))
	binary.LittleEndian.PutUint16(out[4:6], binary.BigEndian.Uint16(g.u[4:6]))
	binary.LittleEndian.PutUint16(out[6:8], binary.BigEndian.Uint16(g.u[6:8]))
	copy(out[8:], g.u[8:])
	return out
}

// Bytes returns the RFC 4122 byte order.
func (g GUID) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, g.u[:])
	return out
}

func (g GUID) IsNil() bool {
	return g.u == uuid.Nil
}

// String renders the canonical lowercase hyphenated form.
func (g GUID) String() string {
	return g.u.String()
}

// UUID exposes the underlying value.
func (g GUID) UUID() uuid.UUID {
	return g.u
}
