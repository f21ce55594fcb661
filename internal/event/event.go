package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	EntryVisited Type = iota + 1
	DirCreated
	FileCopied
	SymlinkCreated
	EntryRemoved
	ModeChanged
	OwnerChanged
	EntrySkipped
	EntryFailed
	ListBatch
)

var typeNames = [...]string{
	EntryVisited:   "EntryVisited",
	DirCreated:     "DirCreated",
	FileCopied:     "FileCopied",
	SymlinkCreated: "SymlinkCreated",
	EntryRemoved:   "EntryRemoved",
	ModeChanged:    "ModeChanged",
	OwnerChanged:   "OwnerChanged",
	EntrySkipped:   "EntrySkipped",
	EntryFailed:    "EntryFailed",
	ListBatch:      "ListBatch",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event reports progress on a single entry of a tree operation.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // path as passed to the filesystem
	Size      int64  // bytes copied (FileCopied) or batch length (ListBatch)
	Error     error
}

// Emit sends e on ch without blocking; the event is dropped if ch is full.
// A nil ch is a no-op.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
