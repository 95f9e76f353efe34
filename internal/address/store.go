// Package address keeps a resident's ordered collection of identities.
//
// Order is the slice position and is changed only by Reorder. Lock flags are
// persisted through a LockStore and reapplied on every refresh; a lock value
// reported by the backend takes precedence.
package address

import (
	"context"
	"log/slog"
	"sync"

	"digipin/internal/domain"
	"digipin/internal/notify"
	"digipin/internal/platform/metrics"
	dErrors "digipin/pkg/domain-errors"
)

// Messages shown after a successful local change.
const (
	MsgLocked   = "Identity Locked"
	MsgUnlocked = "Identity Unlocked"
	MsgDeleted  = "Identity Deleted"
)

// ErrNotConfirmed is returned by Remove when the user declined.
var ErrNotConfirmed = dErrors.New(dErrors.CodeNotConfirmed, "Deletion not confirmed")

// ErrStaleIndex is returned for an index that no longer addresses an entry.
var ErrStaleIndex = dErrors.New(dErrors.CodeStaleSelection, "Identity no longer exists")

// Confirmer asks the user to confirm an irreversible removal.
type Confirmer interface {
	Confirm(ctx context.Context, identity domain.Identity) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, identity domain.Identity) bool

func (f ConfirmFunc) Confirm(ctx context.Context, identity domain.Identity) bool {
	return f(ctx, identity)
}

// Confirmed approves every removal.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, domain.Identity) bool { return true })

// FetchFunc loads the owner's identities from the backend.
type FetchFunc func(ctx context.Context) ([]domain.IdentityRecord, error)

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items []domain.Identity

	owner    string
	locks    LockStore
	notifier notify.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Store)

func WithLockStore(ls LockStore) Option {
	return func(s *Store) {
		if ls != nil {
			s.locks = ls
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates an empty store for owner (the resident's email).
func New(owner string, opts ...Option) *Store {
	s := &Store{
		owner:  owner,
		locks:  NewMemoryLockStore(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Owner() string { return s.owner }

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// List returns a copy of the identities in order.
func (s *Store) List() []domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

func (s *Store) At(index int) (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.items) {
		return domain.Identity{}, false
	}
	return clone(s.items[index]), true
}

// Find returns the identity with alias and its current index.
func (s *Store) Find(alias domain.Alias) (domain.Identity, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(alias)
	if i < 0 {
		return domain.Identity{}, -1, false
	}
	return clone(s.items[i]), i, true
}

// Reorder moves the entry at from to to, shifting the entries between them.
// It reports whether anything moved. Equal or out-of-range indices are a
// no-op.
func (s *Store) Reorder(from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return false
	}
	moved := s.items[from]
	if from < to {
		copy(s.items[from:to], s.items[from+1:to+1])
	} else {
		copy(s.items[to+1:from+1], s.items[to:from])
	}
	s.items[to] = moved
	return true
}

// ToggleLock flips the lock on the entry at index, persists it and notifies
// the new state. A persistence failure is logged; the local flag still flips.
func (s *Store) ToggleLock(ctx context.Context, index int) (domain.Identity, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		return domain.Identity{}, ErrStaleIndex
	}
	s.items[index].Locked = !s.items[index].Locked
	updated := clone(s.items[index])
	s.mu.Unlock()

	if err := s.locks.Save(ctx, s.owner, updated.Alias, updated.Locked); err != nil {
		s.logger.WarnContext(ctx, "failed to persist lock", "alias", updated.Alias, "locked", updated.Locked, "error", err)
	}
	msg := MsgUnlocked
	if updated.Locked {
		msg = MsgLocked
	}
	s.notify(ctx, notify.KindSuccess, msg)
	return updated, nil
}

// Remove deletes the entry at index once confirm approves. Later entries shift
// down by one. The entry is re-checked after confirmation; if the list changed
// meanwhile the removal is refused as stale.
func (s *Store) Remove(ctx context.Context, index int, confirm Confirmer) (domain.Identity, error) {
	target, ok := s.At(index)
	if !ok {
		return domain.Identity{}, ErrStaleIndex
	}
	if confirm == nil || !confirm.Confirm(ctx, target) {
		return domain.Identity{}, ErrNotConfirmed
	}

	s.mu.Lock()
	if index >= len(s.items) || s.items[index].Alias != target.Alias {
		s.mu.Unlock()
		return domain.Identity{}, dErrors.New(dErrors.CodeStaleSelection, "Identity moved before deletion")
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.mu.Unlock()

	if err := s.locks.Forget(ctx, s.owner, target.Alias); err != nil {
		s.logger.WarnContext(ctx, "failed to forget lock", "alias", target.Alias, "error", err)
	}
	s.notify(ctx, notify.KindSuccess, MsgDeleted)
	return target, nil
}

// Append adds a freshly minted identity at the end. Aliases are unique.
func (s *Store) Append(identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(identity.Alias) >= 0 {
		return dErrors.New(dErrors.CodeConflict, "Identity "+string(identity.Alias)+" already exists")
	}
	s.items = append(s.items, clone(identity))
	return nil
}

// UpsertFromServer replaces the contents with records. Lock state comes from
// the record when the backend reports it, else from the lock store. Duplicate
// aliases keep their first occurrence.
func (s *Store) UpsertFromServer(ctx context.Context, records []domain.IdentityRecord) {
	persisted, err := s.locks.Load(ctx, s.owner)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load locks; identities shown unlocked", "error", err)
		persisted = nil
	}

	items := make([]domain.Identity, 0, len(records))
	seen := make(map[domain.Alias]struct{}, len(records))
	for _, rec := range records {
		id := rec.Identity
		if _, dup := seen[id.Alias]; dup {
			s.logger.WarnContext(ctx, "duplicate alias from backend", "alias", id.Alias)
			continue
		}
		seen[id.Alias] = struct{}{}
		if rec.Locked != nil {
			id.Locked = *rec.Locked
		} else {
			id.Locked = persisted[id.Alias]
		}
		items = append(items, clone(id))
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Refresh fetches and upserts. On failure the store is left unchanged and the
// error is returned for the caller to log or toast.
func (s *Store) Refresh(ctx context.Context, fetch FetchFunc) error {
	records, err := fetch(ctx)
	if err != nil {
		s.metrics.IncRefresh(metrics.OutcomeFailure)
		s.logger.WarnContext(ctx, "identity refresh failed; keeping last known list", "owner", s.owner, "error", err)
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.Wrap(err, dErrors.CodeRemote, "Could not load identities")
		}
		return err
	}
	s.UpsertFromServer(ctx, records)
	s.metrics.IncRefresh(metrics.OutcomeSuccess)
	return nil
}

func (s *Store) indexOf(alias domain.Alias) int {
	for i := range s.items {
		if s.items[i].Alias == alias {
			return i
		}
	}
	return -1
}

func (s *Store) notify(ctx context.Context, kind notify.Kind, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, kind, msg)
	}
}

// clone copies the location so callers cannot mutate stored entries.
func clone(id domain.Identity) domain.Identity {
	if id.Location != nil {
		loc := *id.Location
		id.Location = &loc
	}
	return id
}

func cloneAll(items []domain.Identity) []domain.Identity {
	out := make([]domain.Identity, len(items))
	for i, id := range items {
		out[i] = clone(id)
	}
	return out
}
