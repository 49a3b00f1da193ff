package phone_test

import (
	"testing"

	"megacrm-backend/internal/phone"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"local eight digits", "98 765 432", "21698765432"},
		{"already prefixed", "+216 98 765 432", "21698765432"},
		{"prefixed without plus", "21698765432", "21698765432"},
		{"punctuation", "(98)-765.432", "21698765432"},
		{"too short", "12345", "12345"},
		{"foreign", "+33 6 12 34 56 78", "33612345678"},
		{"empty", "", ""},
		{"no digits", "n/a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phone.Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"98765432", "+216 22 333 444", "0033 1 23", "", "abc"} {
		once := phone.Normalize(in)
		assert.Equal(t, once, phone.Normalize(once), in)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "+21698765432", phone.Display("21698765432"))
	assert.Equal(t, "", phone.Display(""))
	assert.Equal(t, "21698765432", phone.Normalize(phone.Display("21698765432")))
}

func TestEqual(t *testing.T) {
	assert.True(t, phone.Equal("98765432", "+216 98 765 432"))
	assert.False(t, phone.Equal("", ""))
	assert.False(t, phone.Equal("98765432", "98765433"))
}
