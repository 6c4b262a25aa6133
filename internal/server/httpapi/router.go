// Package httpapi exposes the REST API: auth, recipe listings and CRUD,
// ratings and private notes. Routing is chi-based; cross-origin access is
// controlled with rs/cors so browser clients on other origins can talk to
// the API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mvoronkov/recipeshelf/internal/logging"
	"github.com/mvoronkov/recipeshelf/internal/server/config"
	"github.com/mvoronkov/recipeshelf/internal/server/services"
)

func New(cfg *config.Config, log logging.Logger, users *services.UserService, recipes *services.RecipeService) http.Handler {
	authHandler := NewAuthHandler(users)
	recipeHandler := NewRecipeHandler(recipes)
	authMiddleware := NewAuthMiddleware([]byte(cfg.SecretKey))

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         3600,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", authHandler.Register)
		auth.Post("/login", authHandler.Login)
		auth.With(authMiddleware.RequireAuth).Get("/profile", authHandler.Profile)
	})

	r.Route("/recipes", func(rec chi.Router) {
		rec.Get("/", recipeHandler.List)
		rec.Get("/{id}", recipeHandler.Get)

		rec.Group(func(priv chi.Router) {
			priv.Use(authMiddleware.RequireAuth)
			priv.Get("/my-recipes", recipeHandler.ListMine)
			priv.Post("/", recipeHandler.Create)
			priv.Patch("/{id}", recipeHandler.Update)
			priv.Delete("/{id}", recipeHandler.Delete)
			priv.Post("/{id}/rate", recipeHandler.Rate)
			priv.Get("/{id}/notes", recipeHandler.ListNotes)
			priv.Post("/{id}/notes", recipeHandler.AddNote)
		})
	})

	return r
}
