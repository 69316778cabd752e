package state

// Notification is a transient user-facing message.
type Notification struct {
	Message string
	// Undoable notifications carry an "Undo" affordance.
	Undoable bool
}

// Notifier receives notifications for display. The engine owns where
// they surface (toast in the live view, log line in headless runs).
type Notifier interface {
	Notify(n Notification)
}

// NotifyFunc adapts a function to the Notifier interface.
type NotifyFunc func(Notification)

// Notify calls f(n).
func (f NotifyFunc) Notify(n Notification) { f(n) }
