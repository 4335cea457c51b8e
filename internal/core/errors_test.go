package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil is a logout", err: nil, want: ReasonLogout},
		{name: "eof", err: proto.ErrDisconnected, want: ReasonOrderlyDisconnect},
		{name: "malformed", err: fmt.Errorf("%w: short header", proto.ErrMalformedFrame), want: ReasonProtocolError},
		{name: "transport", err: &proto.ConnError{Op: "read", Err: errors.New("reset")}, want: ReasonConnectionError},
		{name: "capacity", err: ErrCapacityExceeded, want: ReasonCapacityExceeded},
		{name: "registry", err: ErrRegistryInconsistency, want: ReasonRegistryInconsistency},
		{name: "handshake", err: proto.ErrBadHandshake, want: ReasonBadHandshake},
		{name: "core error code", err: coreError("custom", "custom failure"), want: "custom"},
		{name: "other", err: errors.New("mystery"), want: ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Fatalf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
