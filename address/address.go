package address

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

var (
	// ErrInvalidHost is returned when an inet host is not an IP literal.
	ErrInvalidHost = errors.New("invalid inet host")
	// ErrEmptyPath is returned for a unix address without a path.
	ErrEmptyPath = errors.New("empty unix socket path")
	// ErrUnsupportedAddr is returned by FromNetAddr for unknown net.Addr kinds.
	ErrUnsupportedAddr = errors.New("unsupported network address")
)

// Family identifies the transport family of an Address.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyIPv4
	FamilyIPv6
	FamilyUnix
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	case FamilyUnix:
		return "unix"
	default:
		return "unknown"
	}
}

// Address is an immutable endpoint description: an IP host and port, or a
// filesystem path for local transports. The zero value has FamilyUnknown.
type Address struct {
	family Family
	ip     netip.Addr
	port   uint16
	path   string
}

// NewInet builds an IPv4 or IPv6 address from an IP literal. IPv4-mapped IPv6
// literals are reported as IPv4.
func NewInet(host string, port uint16) (*Address, error) {
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}
	return fromAddrPort(netip.AddrPortFrom(ip, port)), nil
}

// NewUnix builds a local socket address.
func NewUnix(path string) (*Address, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &Address{family: FamilyUnix, path: path}, nil
}

// FromNetAddr converts a standard library net.Addr.
func FromNetAddr(addr net.Addr) (*Address, error) {
	switch v := addr.(type) {
	case nil:
		return nil, ErrUnsupportedAddr
	case *net.TCPAddr:
		return fromAddrPort(v.AddrPort()), nil
	case *net.UDPAddr:
		return fromAddrPort(v.AddrPort()), nil
	case *net.UnixAddr:
		return NewUnix(v.Name)
	}

	ap, err := netip.ParseAddrPort(addr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrUnsupportedAddr, addr.Network(), addr.String())
	}
	return fromAddrPort(ap), nil
}

// fromAddrPort yields FamilyUnknown for an unset IP, such as a wildcard
// listener address.
func fromAddrPort(ap netip.AddrPort) *Address {
	ip := ap.Addr().Unmap()
	if !ip.IsValid() {
		return &Address{}
	}
	family := FamilyIPv6
	if ip.Is4() {
		family = FamilyIPv4
	}
	return &Address{family: family, ip: ip, port: ap.Port()}
}

func (a *Address) Family() Family {
	if a == nil {
		return FamilyUnknown
	}
	return a.family
}

// Host returns the compressed textual IP, or "" for non-inet addresses.
func (a *Address) Host() string {
	if a == nil || (a.family != FamilyIPv4 && a.family != FamilyIPv6) {
		return ""
	}
	return a.ip.String()
}

func (a *Address) Port() uint16 {
	if a == nil {
		return 0
	}
	return a.port
}

func (a *Address) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Canonical returns the family-tagged text form:
//
//	ipv4:127.0.0.1:21
//	ipv6:2001:db8::1:0:0:1:42
//	unix:/tmp/sock
//
// ok is false when the family is not recognized or the IP is unset.
func (a *Address) Canonical() (string, bool) {
	if a == nil {
		return "", false
	}
	switch a.family {
	case FamilyIPv4, FamilyIPv6:
		if !a.ip.IsValid() {
			return "", false
		}
		return a.family.String() + ":" + a.ip.String() + ":" + strconv.FormatUint(uint64(a.port), 10), true
	case FamilyUnix:
		return "unix:" + a.path, true
	default:
		return "", false
	}
}

// String returns the canonical form, or "" when the family is unknown.
func (a *Address) String() string {
	s, _ := a.Canonical()
	return s
}
