// Package notify sends desktop notifications for playback events.
package notify

import (
	"github.com/chorusfm/chorus/internal/playback"
)

// Urgency levels as defined by the Desktop Notifications spec.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// Notification describes a single desktop notification.
type Notification struct {
	Title      string
	Body       string
	Icon       string
	Timeout    int // milliseconds, -1 for server default
	ReplacesID uint32
	Urgency    byte
}

// Notifier posts desktop notifications.
type Notifier interface {
	// Notify displays a notification and returns its server-assigned id.
	Notify(n Notification) (uint32, error)
	// Close dismisses a previously posted notification.
	Close(id uint32) error
}

// Watcher announces track changes as desktop notifications. Each new
// track replaces the previous notification instead of stacking.
type Watcher struct {
	notifier Notifier
	service  playback.Service
	sub      *playback.Subscription
	lastID   uint32
	done     chan struct{}
}

// Watch subscribes to the playback service and posts a notification
// whenever the current track changes. The returned watcher must be
// closed to release the subscription.
func Watch(service playback.Service) (*Watcher, error) {
	notifier, err := New()
	if err != nil {
		return nil, err
	}
	return WatchWith(notifier, service), nil
}

// WatchWith is Watch with an explicit notifier.
func WatchWith(notifier Notifier, service playback.Service) *Watcher {
	w := &Watcher{
		notifier: notifier,
		service:  service,
		sub:      service.Subscribe(),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Watcher) loop() {
	defer func() {
		if w.lastID != 0 {
			_ = w.notifier.Close(w.lastID)
		}
	}()
	for {
		select {
		case ev := <-w.sub.TrackChanged:
			if ev.Current == nil {
				continue
			}
			id, err := w.notifier.Notify(Notification{
				Title:      ev.Current.Title,
				Body:       ev.Current.ArtistLabel,
				Icon:       ev.Current.ThumbnailURL,
				Timeout:    5000,
				ReplacesID: w.lastID,
				Urgency:    UrgencyLow,
			})
			if err == nil {
				w.lastID = id
			}
		case <-w.sub.Done:
			return
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher, dismisses the last notification and
// releases the subscription.
func (w *Watcher) Close() {
	close(w.done)
	w.service.Unsubscribe(w.sub)
}
