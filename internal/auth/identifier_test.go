package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		raw  string
		want Identifier
	}{
		{raw: "test@example.com", want: Identifier{Kind: IdentifierEmail, Value: "test@example.com"}},
		{raw: "  test@example.com ", want: Identifier{Kind: IdentifierEmail, Value: "test@example.com"}},
		{raw: "+79500664444", want: Identifier{Kind: IdentifierPhone, Value: "+79500664444"}},
		{raw: "@", want: Identifier{Kind: IdentifierEmail, Value: "@"}},
		{raw: "not-an-email", want: Identifier{Kind: IdentifierPhone, Value: "not-an-email"}},
		{raw: "", want: Identifier{Kind: IdentifierPhone, Value: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIdentifier(tt.raw))
		})
	}
}

func TestIdentifierKind_String(t *testing.T) {
	assert.Equal(t, "email", IdentifierEmail.String())
	assert.Equal(t, "phone", IdentifierPhone.String())
}
