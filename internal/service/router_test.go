package service

import (
	"testing"

	"satreceiver/internal/frame"
)

func TestDispatchRoutesToRegisteredHandler(t *testing.T) {
	r := NewRouter()
	var got []byte
	r.Register(0x02, func(payload []byte) { got = payload })

	r.Dispatch(frame.Frame{ServiceID: 0x02, Payload: []byte("hello")})

	if string(got) != "hello" {
		t.Fatalf("handler received %q, want %q", got, "hello")
	}
}

func TestDispatchIgnoresUnknownService(t *testing.T) {
	r := NewRouter()
	called := false
	r.Register(0x02, func(payload []byte) { called = true })

	r.Dispatch(frame.Frame{ServiceID: 0x09, Payload: []byte("x")})

	if called {
		t.Fatalf("handler for 0x02 was called for service 0x09")
	}
}
