// Package inmemdb implements the domain repositories in memory. Used by tests and by the API when no database is configured.
package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/event"
	"github.com/ilmhub/ilm/core/forum"
	"github.com/ilmhub/ilm/core/group"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/quiz"
	"github.com/ilmhub/ilm/core/user"
)

type row[T any] struct {
	seq int
	val T
}

// table is a map of rows remembering insertion order. Callers hold mutex.
type table[T any] struct {
	mutex sync.RWMutex
	rows  map[string]*row[T]
	seq   int
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*row[T])}
}

func (t *table[T]) insert(id string, v T) {
	t.seq++
	t.rows[id] = &row[T]{seq: t.seq, val: v}
}

func (t *table[T]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return r.val, true
}

// put replaces an existing row and reports whether it existed.
func (t *table[T]) put(id string, v T) bool {
	r, ok := t.rows[id]
	if ok {
		r.val = v
	}
	return ok
}

func (t *table[T]) remove(ids ...string) {
	for _, id := range ids {
		delete(t.rows, id)
	}
}

// all returns every row in insertion order.
func (t *table[T]) all() []T {
	rows := make([]*row[T], 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	vals := make([]T, 0, len(rows))
	for _, r := range rows {
		vals = append(vals, r.val)
	}
	return vals
}

type DB struct {
	users      *table[user.User]
	events     *table[event.Event]
	jobs       *table[job.Job]
	groups     *table[group.Group]
	content    *table[content.Item]
	activities *table[activity.Activity]
	quizzes    *table[quiz.Quiz]
	hadiths    *table[hadith.Hadith]
	questions  *table[forum.Question]
	answers    *table[forum.Answer]
}

func NewDB() *DB {
	return &DB{
		users:      newTable[user.User](),
		events:     newTable[event.Event](),
		jobs:       newTable[job.Job](),
		groups:     newTable[group.Group](),
		content:    newTable[content.Item](),
		activities: newTable[activity.Activity](),
		quizzes:    newTable[quiz.Quiz](),
		hadiths:    newTable[hadith.Hadith](),
		questions:  newTable[forum.Question](),
		answers:    newTable[forum.Answer](),
	}
}

func newID() string {
	return uuid.New().String()
}

// helpers shared by the repositories

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchesAny(search string, fields ...string) bool {
	for _, f := range fields {
		if containsFold(f, search) {
			return true
		}
	}
	return false
}

func compareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// compareNullTimes sorts null values first, so they come last when descending.
func compareNullTimes(a, b null.Time) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	}
	return compareTimes(a.Time, b.Time)
}

// sortRows orders rows like an SQL ORDER BY would, cmp comparing two rows on one field.
func sortRows[T any](rows []T, ordering []core.DBOrdering, cmp func(a, b T, field string) int) {
	if len(ordering) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range ordering {
			c := cmp(rows[i], rows[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func pageRows[T any](rows []T, page core.Page) []T {
	page.Clean()
	start, end := page.Slice(len(rows))
	return rows[start:end]
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss...)
}
