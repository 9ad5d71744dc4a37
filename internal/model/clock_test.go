package model

import (
	"testing"
	"time"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time { return f.t }
func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestClock(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClock(10 * time.Second)
	c.now = ft.now

	ft.advance(time.Second)
	if got := c.GetTimeLeft(); got != 10*time.Second {
		t.Fatalf("stopped clock ran: %s", got)
	}

	c.Start()
	ft.advance(3 * time.Second)
	if got := c.GetTimeLeft(); got != 7*time.Second {
		t.Errorf("running clock = %s, want 7s", got)
	}
	c.Start()
	ft.advance(time.Second)
	c.Stop()
	c.Stop()
	if got := c.GetTimeLeft(); got != 6*time.Second {
		t.Errorf("after stop = %s, want 6s", got)
	}

	c.Start()
	ft.advance(6 * time.Second)
	if !c.Expired() {
		t.Errorf("expected the clock to have run out")
	}
}
