package storage

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"greencart/internal/schema"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeRepo is an in-memory Repository. Committed rows are kept per table and
// primary keys are honored the way the real backends do.
type fakeRepo struct {
	mu        sync.Mutex
	committed map[string][][]any
	execs     []string
	closed    bool

	// failOn makes InsertIgnore fail for that table.
	failOn string
	// rolledBack/committedTx count finished transactions.
	rolledBack  int
	committedTx int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{committed: map[string][][]any{}} }

func (f *fakeRepo) Begin(context.Context) (Tx, error) {
	return &fakeTx{repo: f, pending: map[string][][]any{}}, nil
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeRepo) Close() { f.closed = true }

type fakeTx struct {
	repo    *fakeRepo
	pending map[string][][]any
	order   []string
}

func (t *fakeTx) InsertIgnore(_ context.Context, def schema.Table, rows [][]any) (int64, error) {
	if t.repo.failOn == def.Name {
		return 0, errors.New("constraint violation")
	}
	if _, ok := t.pending[def.Name]; !ok {
		t.order = append(t.order, def.Name)
	}
	seen := map[any]bool{}
	key := -1
	if len(def.PrimaryKey) == 1 {
		for i, c := range def.Columns {
			if c.Name == def.PrimaryKey[0] {
				key = i
			}
		}
	}
	if key >= 0 {
		for _, r := range t.repo.committed[def.Name] {
			seen[r[key]] = true
		}
		for _, r := range t.pending[def.Name] {
			seen[r[key]] = true
		}
	}
	var n int64
	for _, r := range rows {
		if key >= 0 {
			if seen[r[key]] {
				continue
			}
			seen[r[key]] = true
		}
		t.pending[def.Name] = append(t.pending[def.Name], append([]any(nil), r...))
		n++
	}
	return n, nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for name, rows := range t.pending {
		t.repo.committed[name] = append(t.repo.committed[name], rows...)
	}
	t.repo.committedTx++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	t.repo.rolledBack++
	return nil
}
