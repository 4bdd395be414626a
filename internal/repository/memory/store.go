// Package memory implements the repository interfaces in process memory.
// Documents are kept BSON encoded so callers never share state with the store.
package memory

import (
	"alcyxob/learnhub/internal/repository"
	"context"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	usersTable       = "users"
	coursesTable     = "courses"
	lessonsTable     = "lessons"
	assignmentsTable = "assignments"
	submissionsTable = "submissions"
	themesTable      = "themes"
	threadsTable     = "forum_threads"
	postsTable       = "forum_posts"
)

type table map[primitive.ObjectID][]byte

// Store holds every collection. Transactions are serialised; each one keeps
// an undo log of the documents it wrote, so a rollback only reverts its own
// writes.
type Store struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	tables map[string]table
}

func NewStore() *Store {
	return &Store{tables: make(map[string]table)}
}

// NewRepositories wires every in-memory repository against store.
func NewRepositories(store *Store) repository.Repositories {
	return repository.Repositories{
		Users:       &userRepository{store: store},
		Courses:     &courseRepository{store: store},
		Lessons:     &lessonRepository{store: store},
		Assignments: &assignmentRepository{store: store},
		Submissions: &submissionRepository{store: store},
		Themes:      &themeRepository{store: store},
		Threads:     &discussionRepository{store: store, table: threadsTable},
		Posts:       &discussionRepository{store: store, table: postsTable},
		Tx:          store,
	}
}

type docKey struct {
	table string
	id    primitive.ObjectID
}

// prior is a document's state before a transaction first wrote it.
type prior struct {
	doc     []byte
	existed bool
}

type txLog struct {
	undo  map[docKey]prior
	order []docKey
}

type txKey struct{}

func txFrom(ctx context.Context) *txLog {
	if ctx == nil {
		return nil
	}
	log, _ := ctx.Value(txKey{}).(*txLog)
	return log
}

// WithTransaction implements repository.Transactor. Calls nested inside an
// open transaction join it.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &txLog{undo: make(map[docKey]prior)}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		s.rollback(log)
		return err
	}
	return nil
}

func (s *Store) rollback(log *txLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(log.order) - 1; i >= 0; i-- {
		k := log.order[i]
		p := log.undo[k]
		if p.existed {
			s.table(k.table)[k.id] = p.doc
		} else {
			delete(s.table(k.table), k.id)
		}
	}
}

// record remembers the state of a document the first time the transaction
// in ctx touches it.
func (s *Store) record(ctx context.Context, name string, id primitive.ObjectID) {
	log := txFrom(ctx)
	if log == nil {
		return
	}
	k := docKey{table: name, id: id}
	if _, seen := log.undo[k]; seen {
		return
	}
	doc, ok := s.table(name)[id]
	log.undo[k] = prior{doc: doc, existed: ok}
	log.order = append(log.order, k)
}

// The helpers below expect s.mu to be held.

func (s *Store) table(name string) table {
	t, ok := s.tables[name]
	if !ok {
		t = make(table)
		s.tables[name] = t
	}
	return t
}

func save(ctx context.Context, s *Store, name string, id primitive.ObjectID, v interface{}) error {
	doc, err := bson.Marshal(v)
	if err != nil {
		return pkgerrors.Wrapf(err, "encode %s document", name)
	}
	s.record(ctx, name, id)
	s.table(name)[id] = doc
	return nil
}

func load[T any](s *Store, name string, id primitive.ObjectID) (*T, error) {
	doc, ok := s.table(name)[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var out T
	if err := bson.Unmarshal(doc, &out); err != nil {
		return nil, pkgerrors.Wrapf(err, "decode %s document", name)
	}
	return &out, nil
}

// scan decodes every document of a table and keeps those accepted by keep.
func scan[T any](s *Store, name string, keep func(*T) bool) ([]T, error) {
	out := []T{}
	for _, doc := range s.table(name) {
		var v T
		if err := bson.Unmarshal(doc, &v); err != nil {
			return nil, pkgerrors.Wrapf(err, "decode %s document", name)
		}
		if keep == nil || keep(&v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// first returns the first document accepted by keep, or ErrNotFound.
func first[T any](s *Store, name string, keep func(*T) bool) (*T, error) {
	found, err := scan(s, name, keep)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func remove(ctx context.Context, s *Store, name string, id primitive.ObjectID) error {
	t := s.table(name)
	if _, ok := t[id]; !ok {
		return repository.ErrNotFound
	}
	s.record(ctx, name, id)
	delete(t, id)
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func withoutID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
