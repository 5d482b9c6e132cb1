package version

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
	EventRenamed EventKind = "renamed"
	// EventCurrent reports a move of the current pointer. An empty VersionID
	// means the pointer was cleared.
	EventCurrent EventKind = "current"
)

// Event is one change to the collection.
type Event struct {
	Kind       EventKind `json:"type"`
	VersionID  string    `json:"versionId,omitempty"`
	PreviousID string    `json:"previousId,omitempty"`
}

// publishLocked never blocks; a subscriber whose buffer is full loses its
// oldest pending event.
func (s *Store) publishLocked(evt Event) {
	for _, ch := range s.subs {
		select {
		case ch <- evt:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- evt:
		default:
		}
	}
}
