package gateway

import (
	"fmt"
	"strings"

	"github.com/opd-ai/msgcrypt/crypto"
)

// Recipient addresses a basic-mode message by identity, phone number or
// e-mail address.
type Recipient struct {
	field string
	value string
}

// ToID addresses an 8 character gateway identity.
func ToID(id crypto.Identity) Recipient {
	return Recipient{field: "to", value: string(id)}
}

// ToPhone addresses an E.164 phone number. A leading '+' is removed.
func ToPhone(phone string) Recipient {
	return Recipient{field: "phone", value: strings.TrimPrefix(phone, "+")}
}

// ToEmail addresses an e-mail address.
func ToEmail(email string) Recipient {
	return Recipient{field: "email", value: email}
}

func (r Recipient) String() string {
	return r.field + ":" + r.value
}

func (r Recipient) validate() error {
	switch r.field {
	case "to":
		_, err := crypto.ParseIdentity(r.value)
		return err
	case "phone", "email":
		if r.value == "" {
			return fmt.Errorf("%w: empty %s", ErrBadSenderOrRecipient, r.field)
		}
		return nil
	default:
		return fmt.Errorf("%w: recipient not set", ErrBadSenderOrRecipient)
	}
}

// LookupKind selects the criterion of an identity lookup.
type LookupKind string

const (
	// LookupPhone looks up an E.164 phone number without leading '+'.
	LookupPhone LookupKind = "phone"
	// LookupPhoneHash looks up a hex HMAC-SHA256 phone hash.
	LookupPhoneHash LookupKind = "phone_hash"
	// LookupEmail looks up an e-mail address.
	LookupEmail LookupKind = "email"
	// LookupEmailHash looks up a hex HMAC-SHA256 e-mail hash.
	LookupEmailHash LookupKind = "email_hash"
)

// LookupCriterion is what an identity lookup searches by.
type LookupCriterion struct {
	Kind  LookupKind
	Value string
}

func (c LookupCriterion) validate() error {
	switch c.Kind {
	case LookupPhone, LookupPhoneHash, LookupEmail, LookupEmailHash:
	default:
		return fmt.Errorf("unknown lookup kind %q", c.Kind)
	}
	if c.Value == "" {
		return fmt.Errorf("empty %s lookup value", c.Kind)
	}
	return nil
}
