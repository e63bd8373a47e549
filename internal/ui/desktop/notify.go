package desktop

import (
	"fmt"

	"fyne.io/fyne/v2"

	"ezlockin/internal/core/cycle"
)

// notificationFor maps a cycle event to the desktop notification announcing it.
func notificationFor(event cycle.Event) (*fyne.Notification, bool) {
	switch event.Type {
	case cycle.EventPersistenceError:
		return fyne.NewNotification("Could not save progress", event.Message), true
	case cycle.EventIdleError:
		return fyne.NewNotification("Idle detection unavailable", event.Message), true
	case cycle.EventIdlePause:
		return fyne.NewNotification("Timer paused", "Paused after inactivity ("+event.Message+")"), true
	case cycle.EventPhaseChange:
		if event.Previous == cycle.PhaseLongBreak && event.Status.Phase == cycle.PhaseFocus {
			return fyne.NewNotification("Break Finished", fmt.Sprintf("Back to focus, round %d.", event.Status.Round)), true
		}
	}
	return nil, false
}

// notifier throttles error notifications to one per kind per phase. It is
// owned by a single goroutine.
type notifier struct {
	shown map[cycle.EventType]bool
}

func newNotifier() *notifier {
	return &notifier{shown: make(map[cycle.EventType]bool)}
}

// next returns the notification to send for event, if any.
func (notifier *notifier) next(event cycle.Event) (*fyne.Notification, bool) {
	if event.Type == cycle.EventPhaseChange {
		clear(notifier.shown)
	}
	notification, ok := notificationFor(event)
	if !ok {
		return nil, false
	}
	switch event.Type {
	case cycle.EventPersistenceError, cycle.EventIdleError:
		if notifier.shown[event.Type] {
			return nil, false
		}
		notifier.shown[event.Type] = true
	}
	return notification, true
}
