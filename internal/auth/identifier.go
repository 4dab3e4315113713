package auth

import "strings"

// IdentifierKind says which user field a login identifier refers to.
type IdentifierKind int

const (
	IdentifierPhone IdentifierKind = iota
	IdentifierEmail
)

func (k IdentifierKind) String() string {
	if k == IdentifierEmail {
		return "email"
	}
	return "phone"
}

// Identifier is a login identifier classified once at the login boundary.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// ParseIdentifier classifies raw as an email when it contains "@" and as a
// phone number otherwise. The format itself is not validated here.
func ParseIdentifier(raw string) Identifier {
	value := strings.TrimSpace(raw)
	if strings.Contains(value, "@") {
		return Identifier{Kind: IdentifierEmail, Value: value}
	}
	return Identifier{Kind: IdentifierPhone, Value: value}
}
