package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseStatusFilter(t *testing.T) {
	tests := []struct {
		raw  string
		want *TicketStatus
	}{
		{"open", ptr(TicketStatusOpen)},
		{" in_progress ", ptr(TicketStatusInProgress)},
		{"closed", ptr(TicketStatusClosed)},
		{"", nil},
		{"bogus", nil},
		{"OPEN", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, ParseStatusFilter(tt.raw))
		})
	}
}

func TestRoleAndSession(t *testing.T) {
	require.True(t, RoleAdmin.Valid())
	require.False(t, Role("root").Valid())

	var nobody *User
	require.False(t, nobody.IsAdmin())
	require.True(t, (&User{Role: RoleAdmin}).IsAdmin())

	now := time.Now()
	require.False(t, Session{}.Expired(now))
	require.True(t, Session{ExpiresAt: now}.Expired(now))
	require.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
}

func ptr(s TicketStatus) *TicketStatus { return &s }
