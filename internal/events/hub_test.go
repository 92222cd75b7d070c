package events

import "testing"

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.SubscribeN(1)

	h.Publish(MakeEvent("run-1", LeadFound, 1, map[string]any{"email": "jane@gmail.com"}))

	for _, ch := range []chan string{a, b} {
		msg := <-ch
		e, err := Parse(msg)
		if err != nil {
			t.Fatal(err)
		}
		if e.Type != LeadFound || e.RunID != "run-1" || e.Version != 1 {
			t.Fatalf("event=%+v", e)
		}
	}

	// b is full after one more event; publishing must not block
	h.Publish("x")
	h.Publish("y")
	if got := <-b; got != "x" {
		t.Fatalf("got %q", got)
	}

	h.Unsubscribe(a)
	h.Unsubscribe(a) // second call is a no-op
	n := 0
	for range a { // ends only once a is closed
		n++
	}
	if n != 2 {
		t.Fatalf("drained %d buffered events, want 2", n)
	}
}
