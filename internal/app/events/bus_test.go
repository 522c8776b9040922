package events

import "testing"

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicPing)
	defer unsubscribe()

	bus.Publish(TopicPing, "hello")

	select {
	case payload := <-ch:
		if payload != "hello" {
			t.Errorf("payload = %v", payload)
		}
	default:
		t.Fatal("nothing delivered")
	}
}

func TestPublishRacesUnsubscribe(t *testing.T) {
	bus := NewBus()

	// Publish snapshots the subscriber set and sends outside the lock, so
	// an unsubscribe landing mid-publish must not blow up the publisher.
	for i := 0; i < 200; i++ {
		_, unsubscribe := bus.Subscribe(TopicNotification)
		done := make(chan struct{})
		go func() {
			for j := 0; j < 5; j++ {
				bus.Publish(TopicNotification, j)
			}
			close(done)
		}()
		unsubscribe()
		<-done
	}
}
