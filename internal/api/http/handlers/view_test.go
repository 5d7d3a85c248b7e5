package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirect(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"/tickets", "/tickets"},
		{"  /tickets/3 ", "/tickets/3"},
		{"", "/app"},
		{"//evil.example", "/app"},
		{"/\\evil.example", "/app"},
		{"https://evil.example", "/app"},
		{"tickets", "/app"},
	} {
		assert.Equal(t, tc.want, SafeRedirect(tc.in, "/app"), tc.in)
	}
}

func TestStatusFilterValue(t *testing.T) {
	assert.Equal(t, "closed", statusFilterValue(" closed "))
	assert.Equal(t, "", statusFilterValue("bogus"))
	assert.Equal(t, "", statusFilterValue(""))
}
