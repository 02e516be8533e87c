package game

// ListenerID identifies a registered change listener
type ListenerID int

type listener struct {
	id ListenerID
	fn func()
}

// Listeners is an ordered list of change callbacks.
//
// Callbacks run synchronously, in registration order, on the goroutine
// that performed the change. A callback must not add or remove listeners
// on the same list, or mutate the entity it is observing: the list is
// iterated in place and such calls may cause skipped or repeated
// notifications.
type Listeners struct {
	nextID ListenerID
	fns    []listener
}

// Add registers fn and calls it once straight away so the observer can
// initialise itself from the current state.
func (l *Listeners) Add(fn func()) ListenerID {
	l.nextID++
	id := l.nextID
	l.fns = append(l.fns, listener{id: id, fn: fn})
	fn()
	return id
}

// Remove unregisters a listener. Unknown ids are ignored.
func (l *Listeners) Remove(id ListenerID) {
	for i, ln := range l.fns {
		if ln.id == id {
			l.fns = append(l.fns[:i], l.fns[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners
func (l *Listeners) Len() int {
	return len(l.fns)
}

// Notify calls every listener in registration order
func (l *Listeners) Notify() {
	for _, ln := range l.fns {
		ln.fn()
	}
}
