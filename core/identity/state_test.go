package identity

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    State
		event   Event
		want    State
		wantErr bool
	}{
		{from: Unknown, event: TokenFound, want: Checking},
		{from: Unknown, event: NoToken, want: Unauthenticated},
		{from: Checking, event: FetchSucceeded, want: Authenticated},
		{from: Checking, event: FetchFailed, want: Unauthenticated},
		{from: Authenticated, event: SignedOut, want: Unauthenticated},
		{from: Authenticated, event: FetchFailed, want: Unauthenticated},
		{from: Authenticated, event: TokenFound, want: Checking},
		{from: Unauthenticated, event: TokenFound, want: Checking},
		{from: Unauthenticated, event: NoToken, want: Unauthenticated},

		{from: Unknown, event: FetchSucceeded, want: Unknown, wantErr: true},
		{from: Checking, event: SignedOut, want: Checking, wantErr: true},
		{from: Unauthenticated, event: FetchSucceeded, want: Unauthenticated, wantErr: true},
		{from: Unauthenticated, event: SignedOut, want: Unauthenticated, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.from.String()+" on "+tc.event.String(), func(t *testing.T) {
			got, err := Transition(tc.from, tc.event)
			assert.Equal(t, tc.want, got)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrIllegalTransition))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "checking", Checking.String())
	assert.Equal(t, "invalid", State(42).String())
	assert.Equal(t, "signed out", SignedOut.String())
}
