//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest = "org.freedesktop.Notifications"
	notifyPath = "/org/freedesktop/Notifications"
)

type dbusNotifier struct {
	conn *dbus.Conn
}

// New returns a notifier backed by the org.freedesktop.Notifications
// service on the session bus. When no session bus is available it
// returns a notifier that silently discards notifications, so callers
// on headless systems need no special handling.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return noopNotifier{}, nil
	}
	return &dbusNotifier{conn: conn}, nil
}

func (d *dbusNotifier) Notify(n Notification) (uint32, error) {
	obj := d.conn.Object(notifyDest, notifyPath)
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(n.Urgency),
		"desktop-entry": dbus.MakeVariant("chorus"),
	}
	call := obj.Call(notifyDest+".Notify", 0,
		"Chorus",     // app_name
		n.ReplacesID, // replaces_id
		n.Icon,       // app_icon
		n.Title,      // summary
		n.Body,       // body
		[]string{},   // actions
		hints,
		int32(n.Timeout),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("send notification: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("read notification id: %w", err)
	}
	return id, nil
}

func (d *dbusNotifier) Close(id uint32) error {
	obj := d.conn.Object(notifyDest, notifyPath)
	call := obj.Call(notifyDest+".CloseNotification", 0, id)
	if call.Err != nil {
		return fmt.Errorf("close notification: %w", call.Err)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(Notification) (uint32, error) { return 0, nil }
func (noopNotifier) Close(uint32) error                  { return nil }
