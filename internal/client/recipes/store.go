// Package recipes is the collection cache: the authoritative in-memory copy
// of the three possibly-overlapping recipe collections (all, mine, and the
// current detail view) plus pagination and query state.
//
// Every mutation is one atomic transition under the store mutex, so a
// reader never observes a patch or removal applied to one collection but
// not another.
package recipes

import (
	"sync"

	"github.com/mvoronkov/recipeshelf/internal/client/models"
)

// Collection identifies one of the two list collections.
type Collection string

const (
	CollectionAll  Collection = "all"
	CollectionMine Collection = "mine"
)

// currentKey is the fence key for detail-view fetches.
const currentKey = "current"

// Filters are the non-search list filters.
type Filters struct {
	Cuisine string
}

// Snapshot is a copy of the cache state handed to readers.
type Snapshot struct {
	All     []models.Recipe
	Mine    []models.Recipe
	Current *models.Recipe

	AllLoading     bool
	MineLoading    bool
	CurrentLoading bool

	AllError     string
	MineError    string
	CurrentError string

	Pagination  models.Pagination
	SearchQuery string
	Filters     Filters
}

// Store holds the cached collections.
type Store struct {
	mu sync.Mutex

	all     []models.Recipe
	mine    []models.Recipe
	current *models.Recipe

	allLoading     bool
	mineLoading    bool
	currentLoading bool

	allError     string
	mineError    string
	currentError string

	pagination  models.Pagination
	searchQuery string
	filters     Filters

	fence *fence
}

func NewStore() *Store {
	return &Store{fence: newFence()}
}

// Snapshot returns a copy of the current state. The contained Recipe values
// are copies; slices inside them are shared and treated as immutable.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		All:            append([]models.Recipe(nil), s.all...),
		Mine:           append([]models.Recipe(nil), s.mine...),
		AllLoading:     s.allLoading,
		MineLoading:    s.mineLoading,
		CurrentLoading: s.currentLoading,
		AllError:       s.allError,
		MineError:      s.mineError,
		CurrentError:   s.currentError,
		Pagination:     s.pagination,
		SearchQuery:    s.searchQuery,
		Filters:        s.filters,
	}
	if s.current != nil {
		c := *s.current
		snap.Current = &c
	}
	return snap
}

// BeginFetch reserves a fence sequence for a list fetch and marks the
// collection loading.
func (s *Store) BeginFetch(col Collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLoadingLocked(col, true)
	s.setErrorLocked(col, "")
	return s.fence.begin(string(col))
}

// ApplyPage lands one fetched page: page 1 replaces the collection, later
// pages append (both navigation modes exist in the application). A stale
// sequence is discarded and the method reports false.
func (s *Store) ApplyPage(col Collection, seq uint64, page int, items []models.Recipe, meta models.Pagination) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fence.commit(string(col), seq) {
		return false
	}
	s.setLoadingLocked(col, false)

	target := &s.all
	if col == CollectionMine {
		target = &s.mine
	}
	if page == 1 {
		*target = append([]models.Recipe(nil), items...)
	} else {
		*target = append(*target, items...)
	}
	s.pagination = meta
	return true
}

// FailFetch records a fetch failure for the collection unless a newer
// response already landed.
func (s *Store) FailFetch(col Collection, seq uint64, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fence.commit(string(col), seq) {
		return false
	}
	s.setLoadingLocked(col, false)
	s.setErrorLocked(col, msg)
	return true
}

// BeginCurrentFetch reserves a fence sequence for a detail-view fetch.
func (s *Store) BeginCurrentFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentLoading = true
	s.currentError = ""
	return s.fence.begin(currentKey)
}

// SetCurrent lands a detail-view fetch (nil clears the view). A stale
// sequence is discarded.
func (s *Store) SetCurrent(seq uint64, r *models.Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fence.commit(currentKey, seq) {
		return false
	}
	s.currentLoading = false
	s.current = r
	return true
}

// FailCurrentFetch records a detail-view fetch failure.
func (s *Store) FailCurrentFetch(seq uint64, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fence.commit(currentKey, seq) {
		return false
	}
	s.currentLoading = false
	s.currentError = msg
	return true
}

// ClearCurrent drops the detail view unconditionally (navigation away).
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Prepend inserts a freshly created recipe at the head of both list
// collections.
func (s *Store) Prepend(r models.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mine = append([]models.Recipe{r}, s.mine...)
	s.all = append([]models.Recipe{r}, s.all...)
}

// ReplaceByID substitutes the updated recipe in every collection holding
// its id, the current detail view included, in one transition.
func (s *Store) ReplaceByID(r models.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.all {
		if s.all[i].ID == r.ID {
			s.all[i] = r
		}
	}
	for i := range s.mine {
		if s.mine[i].ID == r.ID {
			s.mine[i] = r
		}
	}
	if s.current != nil && s.current.ID == r.ID {
		c := r
		s.current = &c
	}
}

// RemoveByID removes the id from every collection that can contain it,
// clearing the detail view if it matches, in one transition.
func (s *Store) RemoveByID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.all = removeID(s.all, id)
	s.mine = removeID(s.mine, id)
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
}

func removeID(list []models.Recipe, id int64) []models.Recipe {
	out := list[:0]
	for _, r := range list {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// ApplyRating patches the server-computed rating aggregate onto every
// cached copy of the id, the detail view included, in one transition.
func (s *Store) ApplyRating(id int64, averageRating float64, ratingsCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch := func(r *models.Recipe) {
		if r.ID == id {
			r.AverageRating = averageRating
			r.RatingsCount = ratingsCount
		}
	}
	for i := range s.all {
		patch(&s.all[i])
	}
	for i := range s.mine {
		patch(&s.mine[i])
	}
	if s.current != nil {
		patch(s.current)
	}
}

// SetSearchQuery records the committed search term.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = q
}

// SetFilters records the list filters.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

func (s *Store) setLoadingLocked(col Collection, v bool) {
	if col == CollectionMine {
		s.mineLoading = v
	} else {
		s.allLoading = v
	}
}

func (s *Store) setErrorLocked(col Collection, msg string) {
	if col == CollectionMine {
		s.mineError = msg
	} else {
		s.allError = msg
	}
}
