package patch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Destination is the reserved name of the context's destination node.
const Destination = "destination"

var ErrInvalidAddress = errors.New("invalid address")

// Address names a connection endpoint: a node port or a node's param.
type Address struct {
	Node  string
	Port  int
	Param string
}

// ParseAddress parses `name`, `name[port]` or `name.param`.
func ParseAddress(s string) (Address, error) {
	addr := Address{}
	rest := s
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		addr.Param = rest[i+1:]
		rest = rest[:i]
		if !isIdentifier(addr.Param) {
			return Address{}, fmt.Errorf("%w: %q: bad param name", ErrInvalidAddress, s)
		}
	}
	if i := strings.IndexByte(rest, '['); i >= 0 {
		if !strings.HasSuffix(rest, "]") {
			return Address{}, fmt.Errorf("%w: %q: unterminated port index", ErrInvalidAddress, s)
		}
		port, err := strconv.Atoi(rest[i+1 : len(rest)-1])
		if err != nil || port < 0 {
			return Address{}, fmt.Errorf("%w: %q: bad port index", ErrInvalidAddress, s)
		}
		if addr.Param != "" {
			return Address{}, fmt.Errorf("%w: %q: a param has no ports", ErrInvalidAddress, s)
		}
		addr.Port = port
		rest = rest[:i]
	}
	if !isIdentifier(rest) {
		return Address{}, fmt.Errorf("%w: %q: bad node name", ErrInvalidAddress, s)
	}
	addr.Node = rest
	return addr, nil
}

// IsParam reports whether the address targets a param.
func (a Address) IsParam() bool { return a.Param != "" }

// String renders the address in its canonical form.
func (a Address) String() string {
	switch {
	case a.Param != "":
		return a.Node + "." + a.Param
	case a.Port != 0:
		return fmt.Sprintf("%s[%d]", a.Node, a.Port)
	default:
		return a.Node
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}
