package script

// Event identifies the safe point at which a hook fires.
type Event int

const (
	EventCall Event = iota
	EventReturn
	EventCount
)

func (e Event) String() string {
	switch e {
	case EventCall:
		return "call"
	case EventReturn:
		return "return"
	case EventCount:
		return "count"
	}
	return "unknown"
}

// HookMask selects the events a hook wants.
type HookMask uint8

const (
	MaskCall HookMask = 1 << iota
	MaskReturn
	MaskCount
)

// HookFunc runs at a safe point on the machine's goroutine. A non-nil error
// aborts the running script.
type HookFunc func(m *Machine, ev Event) error

// Hook is a safe-point hook configuration. The zero Hook means "no hook".
type Hook struct {
	Func  HookFunc
	Mask  HookMask
	Count int
}

// Wants reports whether the hook is interested in ev. Count events are
// additionally subject to the hook's Count period, which callers track.
func (h Hook) Wants(ev Event) bool {
	if h.Func == nil {
		return false
	}
	switch ev {
	case EventCall:
		return h.Mask&MaskCall != 0
	case EventReturn:
		return h.Mask&MaskReturn != 0
	case EventCount:
		return h.Mask&MaskCount != 0 && h.Count > 0
	}
	return false
}
