package ir

// Event is a temporal event (spec.md §3): a name for a moment, the minimum
// gap (Delay) to the next trigger, and whether it is backed by an
// interface wire.
type Event struct {
	Delay        TimeSub
	Name         string
	HasInterface bool
	Info         InfoIdx
}

// AddEvent allocates a fresh event.
func (c *Component) AddEvent(delay TimeSub, name string, hasInterface bool, info InfoIdx) EventIdx {
	return c.Events.Add(Event{Delay: delay, Name: name, HasInterface: hasInterface, Info: info})
}
