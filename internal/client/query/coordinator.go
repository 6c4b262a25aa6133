// Package query decides when list and detail fetches actually happen: it
// debounces free-text search input, resets pagination on tab or filter
// changes, and hands every fetch a fence ticket from the collection cache so
// late responses cannot clobber newer ones.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mvoronkov/recipeshelf/internal/client/api"
	"github.com/mvoronkov/recipeshelf/internal/client/models"
	"github.com/mvoronkov/recipeshelf/internal/client/recipes"
	"github.com/mvoronkov/recipeshelf/internal/logging"
)

// DefaultDebounce is how long search input must be quiet before a fetch is
// issued.
const DefaultDebounce = 500 * time.Millisecond

// DefaultPageLimit is the page size requested from the server.
const DefaultPageLimit = 12

// Fetcher is the slice of the remote collaborator the coordinator reads
// through.
type Fetcher interface {
	ListRecipes(ctx context.Context, params api.ListParams) (*api.RecipesPage, error)
	ListMyRecipes(ctx context.Context, params api.ListParams) (*api.RecipesPage, error)
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
}

// Tab selects which list collection is active.
type Tab string

const (
	TabAll  Tab = "all"
	TabMine Tab = "mine"
)

// State is a snapshot of the coordinator's own inputs (the fetched data
// itself lives in the collection cache).
type State struct {
	Tab         Tab
	Page        int
	SearchInput string
	SearchTerm  string
	Cuisine     string
}

// Coordinator serializes all query decisions behind one mutex. Fetches run
// on their own goroutines and report back through the cache's fence.
type Coordinator struct {
	api   Fetcher
	cache *recipes.Store
	log   logging.Logger

	window time.Duration
	limit  int

	mu        sync.Mutex
	tab       Tab
	page      int
	rawInput  string
	debounced string
	cuisine   string
	timer     *time.Timer
	timerGen  uint64
}

func New(apiClient Fetcher, cache *recipes.Store, log logging.Logger, window time.Duration, limit int) *Coordinator {
	if window <= 0 {
		window = DefaultDebounce
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &Coordinator{
		api:    apiClient,
		cache:  cache,
		log:    log,
		window: window,
		limit:  limit,
		tab:    TabAll,
		page:   1,
	}
}

// State returns the current query inputs.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Tab:         c.tab,
		Page:        c.page,
		SearchInput: c.rawInput,
		SearchTerm:  c.debounced,
		Cuisine:     c.cuisine,
	}
}

// SetSearchInput records a keystroke. The fetch only happens once the input
// has been quiet for the debounce window; every new keystroke restarts the
// clock, so a burst of typing costs a single request.
func (c *Coordinator) SetSearchInput(ctx context.Context, input string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rawInput = input
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerGen++
	gen := c.timerGen
	c.timer = time.AfterFunc(c.window, func() {
		c.commitSearch(ctx, gen, input)
	})
}

// SubmitSearch resets to the first page and fetches immediately, without
// waiting out the debounce window. The fetch uses the last committed search
// term, not the raw input: a keystroke still pending its window is left
// alone and commits (with its own fetch) when the window elapses.
func (c *Coordinator) SubmitSearch(ctx context.Context) {
	c.mu.Lock()
	c.page = 1
	fetch := c.listFetchLocked()
	c.mu.Unlock()

	go fetch(ctx)
}

// SetTab switches the active collection. The page resets to 1 and any search
// text, committed or pending, is discarded.
func (c *Coordinator) SetTab(ctx context.Context, tab Tab) {
	c.mu.Lock()
	c.cancelTimerLocked()
	c.tab = tab
	c.page = 1
	c.rawInput = ""
	c.debounced = ""
	c.cache.SetSearchQuery("")
	fetch := c.listFetchLocked()
	c.mu.Unlock()

	go fetch(ctx)
}

// SetPage fetches the given page of the active collection with the current
// search term. Pages past the first append to the cache.
func (c *Coordinator) SetPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.page = page
	fetch := c.listFetchLocked()
	c.mu.Unlock()

	go fetch(ctx)
}

// SetCuisine applies a cuisine filter and refetches from the first page.
func (c *Coordinator) SetCuisine(ctx context.Context, cuisine string) {
	c.mu.Lock()
	c.cuisine = cuisine
	c.page = 1
	c.cache.SetFilters(recipes.Filters{Cuisine: cuisine})
	fetch := c.listFetchLocked()
	c.mu.Unlock()

	go fetch(ctx)
}

// Refresh refetches the active collection with the current inputs.
func (c *Coordinator) Refresh(ctx context.Context) {
	c.mu.Lock()
	fetch := c.listFetchLocked()
	c.mu.Unlock()

	go fetch(ctx)
}

// FetchDetail loads a single recipe into the detail slot. A stale response
// for a previously requested id is dropped by the fence.
func (c *Coordinator) FetchDetail(ctx context.Context, id int64) {
	seq := c.cache.BeginCurrentFetch()
	go func() {
		r, err := c.api.GetRecipe(ctx, id)
		if err != nil {
			c.log.Warn(ctx, "detail fetch failed", "id", id, "error", err)
			c.cache.FailCurrentFetch(seq, fetchErrorMessage(err))
			return
		}
		c.cache.SetCurrent(seq, r)
	}()
}

func (c *Coordinator) commitSearch(ctx context.Context, gen uint64, input string) {
	c.mu.Lock()
	if gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.debounced = input
	c.page = 1
	c.cache.SetSearchQuery(input)
	fetch := c.listFetchLocked()
	c.mu.Unlock()

	fetch(ctx)
}

func (c *Coordinator) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

// listFetchLocked snapshots the current inputs and returns a closure that
// performs the fetch. The caller must hold c.mu; the closure must be run
// without it.
func (c *Coordinator) listFetchLocked() func(context.Context) {
	col := recipes.CollectionAll
	list := c.api.ListRecipes
	if c.tab == TabMine {
		col = recipes.CollectionMine
		list = c.api.ListMyRecipes
	}
	params := api.ListParams{
		Page:    c.page,
		Limit:   c.limit,
		Search:  c.debounced,
		Cuisine: c.cuisine,
	}
	seq := c.cache.BeginFetch(col)

	return func(ctx context.Context) {
		page, err := list(ctx, params)
		if err != nil {
			c.log.Warn(ctx, "list fetch failed", "collection", string(col), "page", params.Page, "error", err)
			c.cache.FailFetch(col, seq, fetchErrorMessage(err))
			return
		}
		c.cache.ApplyPage(col, seq, params.Page, page.Data, page.Pagination)
	}
}

func fetchErrorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
