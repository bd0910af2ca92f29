// Package memstore is an in-memory repository.Store used by tests.
//
// WithinTx runs the callback against a cloned snapshot and swaps it in only
// when the callback returns nil, so a failed transaction leaves no trace.
// InjectFault makes the next call of a named operation fail.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository"
)

type tables struct {
	seq           int64
	order         map[uuid.UUID]int64
	users         map[uuid.UUID]models.User
	clients       map[uuid.UUID]models.ClientProfile     // by user id
	freelancers   map[uuid.UUID]models.FreelancerProfile // by user id
	projects      map[uuid.UUID]models.Project
	proposals     map[uuid.UUID]models.Proposal
	reviews       map[uuid.UUID]models.Review
	notifications map[uuid.UUID]models.Notification
}

func newTables() *tables {
	return &tables{
		order:         map[uuid.UUID]int64{},
		users:         map[uuid.UUID]models.User{},
		clients:       map[uuid.UUID]models.ClientProfile{},
		freelancers:   map[uuid.UUID]models.FreelancerProfile{},
		projects:      map[uuid.UUID]models.Project{},
		proposals:     map[uuid.UUID]models.Proposal{},
		reviews:       map[uuid.UUID]models.Review{},
		notifications: map[uuid.UUID]models.Notification{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		seq:           t.seq,
		order:         cloneMap(t.order),
		users:         cloneMap(t.users),
		clients:       cloneMap(t.clients),
		freelancers:   cloneMap(t.freelancers),
		projects:      cloneMap(t.projects),
		proposals:     cloneMap(t.proposals),
		reviews:       cloneMap(t.reviews),
		notifications: cloneMap(t.notifications),
	}
}

func (t *tables) stamp(id uuid.UUID) {
	if _, ok := t.order[id]; !ok {
		t.seq++
		t.order[id] = t.seq
	}
}

type faults struct {
	mu      sync.Mutex
	pending map[string]error
}

func (f *faults) take(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.pending[op]
	if ok {
		delete(f.pending, op)
	}
	return err
}

type Store struct {
	mu     sync.Mutex
	data   *tables
	faults *faults
	now    func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		data:   newTables(),
		faults: &faults{pending: map[string]error{}},
		now:    time.Now,
	}
}

// SetClock overrides the time source used for default timestamps.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// InjectFault makes the next call of op (e.g. "projects.update_if_status")
// return err. Operation names are "<collection>.<snake_case_method>".
func (s *Store) InjectFault(op string, err error) {
	s.faults.mu.Lock()
	s.faults.pending[op] = err
	s.faults.mu.Unlock()
}

func (s *Store) begin(op string) (*tables, func(), error) {
	s.mu.Lock()
	if err := s.faults.take(op); err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	return s.data, s.mu.Unlock, nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faults.take("store.within_tx"); err != nil {
		return err
	}
	tx := &Store{data: s.data.clone(), faults: s.faults, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository           { return profileRepo{s} }
func (s *Store) Projects() repository.ProjectRepository           { return projectRepo{s} }
func (s *Store) Proposals() repository.ProposalRepository         { return proposalRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository             { return reviewRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

// sortNewest orders by createdAt descending, falling back to insertion order.
func sortNewest[T any](t *tables, items []T, created func(T) time.Time, id func(T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return t.order[id(items[i])] > t.order[id(items[j])]
	})
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
