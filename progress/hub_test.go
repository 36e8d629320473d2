package progress

import (
	"sync"
	"testing"
	"time"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(Event{Task: "ScoutGoTo", Event: "navigate.step", Kingdom: 1, X: 120, Y: 340})

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.Event != "navigate.step" || ev.X != 120 {
				t.Errorf("subscriber %s got %+v", name, ev)
			}
			if ev.At.IsZero() {
				t.Errorf("subscriber %s: timestamp not stamped", name)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s never received the event", name)
		}
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	if h.SubscriberCount() != 1 {
		t.Fatalf("count = %d, want 1", h.SubscriberCount())
	}

	h.Unsubscribe(ch)
	if h.SubscriberCount() != 0 {
		t.Errorf("count = %d, want 0", h.SubscriberCount())
	}
	if _, open := <-ch; open {
		t.Error("channel should be closed after unsubscribe")
	}

	// Publishing with nobody listening must not panic.
	h.Publish(Event{Event: "navigate.done"})
}

// Publishers racing subscriber churn must never send on a channel that
// Unsubscribe already closed.
func TestHub_PublishDuringUnsubscribeChurn(t *testing.T) {
	h := NewHub()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					h.Publish(Event{Event: "navigate.step"})
				}
			}
		}()
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					ch := h.Subscribe()
					h.Unsubscribe(ch)
				}
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	close(stop)
	wg.Wait()

	if h.SubscriberCount() != 0 {
		t.Errorf("count = %d, want 0 after churn", h.SubscriberCount())
	}
}

func TestHub_FullSubscriberDropsNotBlocks(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < channelBuffer+10; i++ {
			h.Publish(Event{Event: "search.visit"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if len(ch) != channelBuffer {
		t.Errorf("buffered %d events, want full buffer %d", len(ch), channelBuffer)
	}
}
