package version

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("version not found")
	ErrAlreadyExists = errors.New("version already exists")
	ErrNameRequired  = errors.New("version name required")
	// ErrStale is returned by Complete when a newer call for the same id was
	// dispatched after the completing one.
	ErrStale = errors.New("stale completion")
)

// MaxExtended caps how many siblings one Extend inserts.
const MaxExtended = 4

// Ticket identifies one dispatched asynchronous call.
type Ticket uint64

// Store is the keyed version collection. All mutation happens under one lock,
// so an update closure always sees a complete prior state.
type Store struct {
	mu      sync.Mutex
	byID    map[string]*Version
	order   []string
	current string
	hasCur  bool

	lastTicket Ticket
	latest     map[string]Ticket
	// renamed maps a saved-away unsaved id to its new name so calls begun
	// before the rename still complete and finish.
	renamed map[string]string

	subs   map[int]chan Event
	subSeq int

	newID  func() string
	logger *zap.Logger
}

type Option func(*Store)

// WithLogger sets the logger used for dropped completions.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the uuid suffix used for unsaved ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		byID:   make(map[string]*Version),
		latest:  make(map[string]Ticket),
		renamed: make(map[string]string),
		subs:   make(map[int]chan Event),
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts an empty version and makes it current. An empty name yields
// an unsaved sentinel id.
func (s *Store) Create(name string) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := name
	if id == "" {
		id = UnsavedPrefix + s.newID()
	}
	if _, ok := s.byID[id]; ok {
		return Version{}, fmt.Errorf("create %q: %w", id, ErrAlreadyExists)
	}
	v := s.insertLocked(id, NewState())
	s.setCurrentLocked(id)
	return v.Clone(), nil
}

// Copy duplicates src under src-copy, src-copy1, src-copy2, ... and makes the
// copy current.
func (s *Store) Copy(src string) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orig, ok := s.byID[src]
	if !ok {
		return Version{}, fmt.Errorf("copy %q: %w", src, ErrNotFound)
	}
	id := src + "-copy"
	for n := 1; s.exists(id); n++ {
		id = src + "-copy" + strconv.Itoa(n)
	}
	cp := orig.Clone()
	cp.ID = id
	cp.Loading = false
	s.byID[id] = &cp
	s.order = append(s.order, id)
	s.publishLocked(Event{Kind: EventCreated, VersionID: id})
	s.setCurrentLocked(id)
	return cp.Clone(), nil
}

// Extend inserts one sibling per description, named "<id> extended <n>" with
// n counting up from 1 and skipping names already taken. At most MaxExtended
// siblings are inserted; the current pointer does not move.
func (s *Store) Extend(id string, descriptions []string) ([]Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = s.resolveLocked(id)
	if !s.exists(id) {
		return nil, fmt.Errorf("extend %q: %w", id, ErrNotFound)
	}
	if len(descriptions) > MaxExtended {
		descriptions = descriptions[:MaxExtended]
	}
	out := make([]Version, 0, len(descriptions))
	n := 1
	for _, desc := range descriptions {
		name := fmt.Sprintf("%s extended %d", id, n)
		for s.exists(name) {
			n++
			name = fmt.Sprintf("%s extended %d", id, n)
		}
		n++
		v := s.insertLocked(name, StateFromDescription(desc))
		out = append(out, v.Clone())
	}
	return out, nil
}

// Switch moves the current pointer.
func (s *Store) Switch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists(id) {
		return fmt.Errorf("switch %q: %w", id, ErrNotFound)
	}
	s.setCurrentLocked(id)
	return nil
}

// Delete removes id. If it was current the pointer becomes unset.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists(id) {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	delete(s.byID, id)
	delete(s.latest, id)
	for old, name := range s.renamed {
		if name == id {
			delete(s.renamed, old)
		}
	}
	s.order = removeString(s.order, id)
	s.publishLocked(Event{Kind: EventDeleted, VersionID: id})
	if s.hasCur && s.current == id {
		s.current, s.hasCur = "", false
		s.publishLocked(Event{Kind: EventCurrent})
	}
	return nil
}

// Save renames an unsaved version to name. Versions that already carry a
// user name are returned unchanged.
func (s *Store) Save(id, name string) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return Version{}, fmt.Errorf("save %q: %w", id, ErrNotFound)
	}
	if !v.Unsaved() {
		return v.Clone(), nil
	}
	if name == "" {
		return Version{}, fmt.Errorf("save %q: %w", id, ErrNameRequired)
	}
	if s.exists(name) {
		return Version{}, fmt.Errorf("save %q as %q: %w", id, name, ErrAlreadyExists)
	}
	delete(s.byID, id)
	v.ID = name
	s.byID[name] = v
	for i, o := range s.order {
		if o == id {
			s.order[i] = name
		}
	}
	if t, ok := s.latest[id]; ok {
		delete(s.latest, id)
		s.latest[name] = t
		if v.Loading {
			s.renamed[id] = name
		}
	}
	s.publishLocked(Event{Kind: EventRenamed, VersionID: name, PreviousID: id})
	if s.hasCur && s.current == id {
		s.setCurrentLocked(name)
	}
	return v.Clone(), nil
}

// Get returns a copy of id.
func (s *Store) Get(id string) (Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return Version{}, false
	}
	return v.Clone(), true
}

// List returns copies of every version in insertion order.
func (s *Store) List() []Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Version, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Current returns the current id, if set.
func (s *Store) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCur
}

// Update applies fn to the state of id and returns the result.
func (s *Store) Update(id string, fn func(*State)) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return Version{}, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	fn(&v.State)
	s.publishLocked(Event{Kind: EventUpdated, VersionID: id})
	return v.Clone(), nil
}

// Snapshot stores the current state as the undo point, replacing any older one.
func (s *Store) Snapshot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("snapshot %q: %w", id, ErrNotFound)
	}
	h := v.State.Clone()
	v.History = &h
	return nil
}

// Undo restores the snapshot of id and clears it. Without a snapshot it
// changes nothing and reports false.
func (s *Store) Undo(id string) (Version, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return Version{}, false, fmt.Errorf("undo %q: %w", id, ErrNotFound)
	}
	if v.History == nil {
		return v.Clone(), false, nil
	}
	v.State = *v.History
	v.History = nil
	s.publishLocked(Event{Kind: EventUpdated, VersionID: id})
	return v.Clone(), true, nil
}

// Begin marks id as loading and issues a ticket newer than every ticket
// issued before it.
func (s *Store) Begin(id string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("begin %q: %w", id, ErrNotFound)
	}
	s.lastTicket++
	s.latest[id] = s.lastTicket
	v.Loading = true
	s.publishLocked(Event{Kind: EventUpdated, VersionID: id})
	return s.lastTicket, nil
}

// Complete applies fn only if t is still the latest ticket for id.
func (s *Store) Complete(id string, t Ticket, fn func(*State)) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = s.resolveLocked(id)
	v, ok := s.byID[id]
	if !ok {
		return Version{}, fmt.Errorf("complete %q: %w", id, ErrNotFound)
	}
	if s.latest[id] != t {
		s.logger.Warn("dropping stale completion",
			zap.String("version", id),
			zap.Uint64("ticket", uint64(t)),
			zap.Uint64("latest", uint64(s.latest[id])))
		return v.Clone(), fmt.Errorf("complete %q: %w", id, ErrStale)
	}
	fn(&v.State)
	s.publishLocked(Event{Kind: EventUpdated, VersionID: id})
	return v.Clone(), nil
}

// Finish clears the loading flag when t is the latest ticket for id. It is a
// no-op for deleted versions and overtaken calls.
func (s *Store) Finish(id string, t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.renamed[id]; ok {
		delete(s.renamed, id)
		id = name
	}
	v, ok := s.byID[id]
	if !ok || s.latest[id] != t {
		return
	}
	v.Loading = false
	s.publishLocked(Event{Kind: EventUpdated, VersionID: id})
}

// resolveLocked follows a rename made by Save while a call was in flight.
func (s *Store) resolveLocked(id string) string {
	if _, ok := s.byID[id]; ok {
		return id
	}
	if name, ok := s.renamed[id]; ok {
		return name
	}
	return id
}

func (s *Store) exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Store) insertLocked(id string, st State) *Version {
	v := &Version{ID: id, State: st}
	s.byID[id] = v
	s.order = append(s.order, id)
	s.publishLocked(Event{Kind: EventCreated, VersionID: id})
	return v
}

func (s *Store) setCurrentLocked(id string) {
	s.current, s.hasCur = id, true
	s.publishLocked(Event{Kind: EventCurrent, VersionID: id})
}

func removeString(in []string, target string) []string {
	out := in[:0]
	for _, s := range in {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// Subscribe streams change events until ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 32)
	s.mu.Lock()
	s.subSeq++
	key := s.subSeq
	s.subs[key] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, key)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}
