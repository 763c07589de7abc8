package msg

import (
	"errors"
	"testing"
	"time"

	"github.com/Iron-Ham/tourguide/internal/tour"
)

func TestRelay_DeliversInOrder(t *testing.T) {
	r := NewRelay(4)
	defer r.Close()

	r.Send(StateChangedMsg{Snapshot: tour.Snapshot{Active: 0}})
	r.Send(ErrMsg{TourID: "welcome", Err: errors.New("boom")})

	first, ok := r.Listen()().(StateChangedMsg)
	if !ok || first.Snapshot.Active != 0 {
		t.Fatalf("first message = %#v", first)
	}
	second, ok := r.Listen()().(ErrMsg)
	if !ok || second.TourID != "welcome" {
		t.Fatalf("second message = %#v", second)
	}
}

func TestRelay_CloseReleasesSenders(t *testing.T) {
	r := NewRelay(1)
	r.Send(TourShownMsg{TourID: "a"})

	done := make(chan struct{})
	go func() {
		r.Send(TourShownMsg{TourID: "b"}) // Buffer full: blocks until Close
		close(done)
	}()

	r.Close()
	r.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send still blocked after Close")
	}
}

func TestRelay_ListenAfterClose(t *testing.T) {
	r := NewRelay(0)
	r.Close()
	if m := r.Listen()(); m != nil {
		t.Errorf("Listen() after Close = %#v, want nil", m)
	}
}

