// Package notifications logs bot events published on the bus so headless
// runs leave an audit trail.
package notifications

import (
	"context"
	"log"

	"steelbot/internal/app/events"
)

// Start consumes notification topics until ctx is done.
func Start(ctx context.Context, bus *events.Bus) {
	pingCh, unsubPing := bus.Subscribe(events.TopicPing)
	noteCh, unsubNote := bus.Subscribe(events.TopicNotification)
	errCh, unsubErr := bus.Subscribe(events.TopicAppError)

	go func() {
		defer unsubPing()
		defer unsubNote()
		defer unsubErr()

		for {
			select {
			case <-ctx.Done():
				return
			case <-pingCh:
				log.Printf("notifications: ping answered")
			case payload := <-noteCh:
				if dto, ok := payload.(events.NotificationDTO); ok {
					log.Printf("notifications: %s: %s", dto.Kind, dto.Text)
				}
			case payload := <-errCh:
				log.Printf("notifications: error: %v", payload)
			}
		}
	}()
}
