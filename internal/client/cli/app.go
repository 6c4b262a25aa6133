package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/mvoronkov/recipeshelf/internal/client/api"
	"github.com/mvoronkov/recipeshelf/internal/client/config"
	"github.com/mvoronkov/recipeshelf/internal/client/dispatch"
	"github.com/mvoronkov/recipeshelf/internal/client/query"
	"github.com/mvoronkov/recipeshelf/internal/client/recipes"
	"github.com/mvoronkov/recipeshelf/internal/client/session"
	"github.com/mvoronkov/recipeshelf/internal/logging"
)

// lazyTokens breaks the construction cycle between the HTTP client (which
// needs a token source) and the session store (which needs the HTTP client).
type lazyTokens struct {
	session *session.Store
}

func (l *lazyTokens) Token() string {
	if l.session == nil {
		return ""
	}
	return l.session.Token()
}

// App ties the client stores together behind the REPL commands.
type App struct {
	config   *config.Config
	log      logging.Logger
	session  *session.Store
	cache    *recipes.Store
	queries  *query.Coordinator
	dispatch *dispatch.Dispatcher
	reader   *bufio.Reader
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	tokens := &lazyTokens{}
	apiClient := api.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, tokens, log)

	storage := session.NewFileStorage(c.TokenFile)
	sess := session.New(apiClient, storage, log)
	tokens.session = sess

	cache := recipes.NewStore()

	a := &App{
		config:   c,
		log:      log,
		session:  sess,
		cache:    cache,
		queries:  query.New(apiClient, cache, log, c.SearchDebounce, c.PageLimit),
		dispatch: dispatch.New(apiClient, cache, log),
		reader:   bufio.NewReader(os.Stdin),
	}

	watchProfile(sess, log)

	return a, nil
}

// watchProfile keeps the profile hydrated. An authenticated session without
// a loaded user gets one fetched: NeedsProfile is level-triggered, so the
// check runs on every state change, whether the gap came from a login whose
// response omitted the user or from a profile wiped by a later transition.
// The flag stops the handler from re-entering itself when the fetch it
// started transitions the store.
func watchProfile(sess *session.Store, log logging.Logger) {
	var hydrating atomic.Bool
	sess.Subscribe(func(st session.State) {
		if !st.NeedsProfile() || !hydrating.CompareAndSwap(false, true) {
			return
		}
		defer hydrating.Store(false)
		ctx := context.Background()
		if err := sess.FetchProfile(ctx); err != nil {
			log.Warn(ctx, "profile hydration failed", "error", err)
		}
	})
}

// Run restores the previous session if possible and starts the REPL. It
// blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	st := a.session.State()
	if st.NeedsProfile() {
		if err := a.session.FetchProfile(ctx); err != nil {
			a.log.Warn(ctx, "session restore failed", "error", err)
		}
	}

	fmt.Println("Welcome to RecipeShelf CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated
}

// status renders the prompt suffix: the current user and browse position.
func (a *App) status() string {
	st := a.session.State()
	qs := a.queries.State()

	s := ""
	if st.User != nil {
		s = st.User.Username
	} else if st.IsAuthenticated {
		s = "me"
	}
	if s != "" {
		s = fmt.Sprintf("(%s %s p.%d)", s, qs.Tab, qs.Page)
	}
	return s
}
