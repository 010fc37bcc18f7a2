package crypto

import "fmt"

// IdentityLength is the fixed length of a gateway identity.
const IdentityLength = 8

// Identity is an 8 character gateway ID such as "ECHOECHO" or "*TESTGW1".
type Identity string

// ParseIdentity validates s. Identities are uppercase alphanumeric; gateway
// identities additionally start with '*'.
func ParseIdentity(s string) (Identity, error) {
	if len(s) != IdentityLength {
		return "", fmt.Errorf("%w: %q is %d characters, want %d", ErrInvalidIdentity, s, len(s), IdentityLength)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '*' && i == 0:
		default:
			return "", fmt.Errorf("%w: %q has invalid character %q at %d", ErrInvalidIdentity, s, c, i)
		}
	}
	return Identity(s), nil
}

// MustParseIdentity is ParseIdentity for constants; it panics on bad input.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsGateway reports whether the identity is a gateway ID.
func (id Identity) IsGateway() bool {
	return len(id) > 0 && id[0] == '*'
}

func (id Identity) String() string {
	return string(id)
}
