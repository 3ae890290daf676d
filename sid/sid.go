package sid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxSubAuthorities is the largest sub-authority count the wire format allows.
	MaxSubAuthorities = 15
	// MaxAuthority is the largest identifier authority (48 bits).
	MaxAuthority = 1<<48 - 1

	headerSize = 8
)

var (
	// ErrInvalidSID is returned for malformed textual or binary SIDs.
	ErrInvalidSID = errors.New("invalid security identifier")
	// ErrTooManySubAuthorities is returned when more than 15 sub-authorities are present.
	ErrTooManySubAuthorities = errors.New("too many sub-authorities")
)

// SID is a structured security identifier.
type SID struct {
	Revision       uint8
	Authority      uint64
	SubAuthorities []uint32
}

// Parse reads the S-R-A-S1-S2... form. The authority may be decimal or a
// 0x-prefixed hexadecimal value.
func Parse(s string) (*SID, error) {
	if len(s) < 2 || (s[0] != 'S' && s[0] != 's') || s[1] != '-' {
		return nil, fmt.Errorf("%w: missing S- prefix in %q", ErrInvalidSID, s)
	}

	parts := strings.Split(s[2:], "-")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q needs revision and authority", ErrInvalidSID, s)
	}
	if len(parts)-2 > MaxSubAuthorities {
		return nil, fmt.Errorf("%w: %q has %d", ErrTooManySubAuthorities, s, len(parts)-2)
	}

	rev, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: revision %q", ErrInvalidSID, parts[0])
	}

	var auth uint64
	if strings.HasPrefix(parts[1], "0x") || strings.HasPrefix(parts[1], "0X") {
		auth, err = strconv.ParseUint(parts[1][2:], 16, 48)
	} else {
		auth, err = strconv.ParseUint(parts[1], 10, 48)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: authority %q", ErrInvalidSID, parts[1])
	}

	out := &SID{
		Revision:       uint8(rev),
		Authority:      auth,
		SubAuthorities: make([]uint32, 0, len(parts)-2),
	}
	for _, p := range parts[2:] {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: sub-authority %q", ErrInvalidSID, p)
		}
		out.SubAuthorities = append(out.SubAuthorities, uint32(v))
	}

	return out, nil
}

// MustParse is Parse for package-level well-known SIDs; it panics on error.
func MustParse(s string) *SID {
	out, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return out
}

// String renders the canonical textual form. Authorities wider than 32 bits
// are printed as 0x followed by twelve hex digits.
func (s *SID) String() string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	b.Grow(16 + 11*len(s.SubAuthorities))
	b.WriteString("S-")
	b.WriteString(strconv.FormatUint(uint64(s.Revision), 10))
	b.WriteByte('-')
	if s.Authority > 0xFFFFFFFF {
		fmt.Fprintf(&b, "0x%012x", s.Authority&MaxAuthority)
	} else {
		b.WriteString(strconv.FormatUint(s.Authority, 10))
	}
	for _, sub := range s.SubAuthorities {
		b.WriteByte('-')
		b.WriteString(strconv.FormatUint(uint64(sub), 10))
	}
	return b.String()
}

// Equal reports whether two SIDs are identical.
func (s *SID) Equal(other *SID) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Revision != other.Revision || s.Authority != other.Authority ||
		len(s.SubAuthorities) != len(other.SubAuthorities) {
		return false
	}
	for i := range s.SubAuthorities {
		if s.SubAuthorities[i] != other.SubAuthorities[i] {
			return false
		}
	}
	return true
}

// MarshalBinary encodes the MS-DTYP wire layout: revision, sub-authority
// count, 48-bit big-endian authority, little-endian sub-authorities.
func (s *SID) MarshalBinary() ([]byte, error) {
	if s == nil {
		return nil, ErrInvalidSID
	}
	if len(s.SubAuthorities) > MaxSubAuthorities {
		return nil, ErrTooManySubAuthorities
	}
	if s.Authority > MaxAuthority {
		return nil, fmt.Errorf("%w: authority exceeds 48 bits", ErrInvalidSID)
	}

	out := make([]byte, headerSize+4*len(s.SubAuthorities))
	out[0] = s.Revision
	out[1] = byte(len(s.SubAuthorities))
	for i := 0; i < 6; i++ {
		out[2+i] = byte(s.Authority >> (8 * (5 - i)))
	}
	for i, sub := range s.SubAuthorities {
		binary.LittleEndian.PutUint32(out[headerSize+4*i:], sub)
	}
	return out, nil
}

// UnmarshalBinary decodes the layout written by MarshalBinary. Trailing
// bytes are rejected.
func (s *SID) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidSID, len(data))
	}
	count := int(data[1])
	if count > MaxSubAuthorities {
		return ErrTooManySubAuthorities
	}
	if len(data) != headerSize+4*count {
		return fmt.Errorf("%w: length %d does not match %d sub-authorities", ErrInvalidSID, len(data), count)
	}

	var auth uint64
	for i := 0; i < 6; i++ {
		auth = auth<<8 | uint64(data[2+i])
	}

	subs := make([]uint32, count)
	for i := range subs {
		subs[i] = binary.LittleEndian.Uint32(data[headerSize+4*i:])
	}

	s.Revision = data[0]
	s.Authority = auth
	s.SubAuthorities = subs
	return nil
}
