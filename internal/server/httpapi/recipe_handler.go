package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mvoronkov/recipeshelf/internal/common"
	"github.com/mvoronkov/recipeshelf/internal/server/models"
	"github.com/mvoronkov/recipeshelf/internal/server/repositories/recipes"
	"github.com/mvoronkov/recipeshelf/internal/server/services"
)

// RecipeHandler serves recipe listings, CRUD, ratings and notes.
type RecipeHandler struct {
	recipes *services.RecipeService
}

func NewRecipeHandler(svc *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: svc}
}

type createRecipeRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Instructions string   `json:"instructions"`
	CookTime     int      `json:"cookTime"`
	Cuisine      string   `json:"cuisine"`
	ImageURL     string   `json:"imageUrl"`
	Ingredients  []string `json:"ingredients"`
}

type updateRecipeRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Instructions *string   `json:"instructions"`
	CookTime     *int      `json:"cookTime"`
	Cuisine      *string   `json:"cuisine"`
	ImageURL     *string   `json:"imageUrl"`
	Ingredients  *[]string `json:"ingredients"`
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type noteRequest struct {
	Content string `json:"content"`
}

func listFilterFromQuery(r *http.Request) recipes.ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return recipes.ListFilter{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		Cuisine: q.Get("cuisine"),
	}
}

func recipeID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *RecipeHandler) list(w http.ResponseWriter, r *http.Request, f recipes.ListFilter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = services.DefaultPageLimit
	}

	items, total, err := h.recipes.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecipesPageJSON(items, f.Page, f.Limit, total))
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, listFilterFromQuery(r))
}

func (h *RecipeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	f := listFilterFromQuery(r)
	f.AuthorID = userID
	h.list(w, r, f)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(r)
	if !ok {
		writeBadRequest(w, "Invalid recipe id")
		return
	}

	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeJSON(recipe))
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	var req createRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	created, err := h.recipes.Create(r.Context(), userID, &models.Recipe{
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		CookTime:     req.CookTime,
		Cuisine:      req.Cuisine,
		ImageURL:     req.ImageURL,
		Ingredients:  req.Ingredients,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecipeJSON(created))
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	id, ok := recipeID(r)
	if !ok {
		writeBadRequest(w, "Invalid recipe id")
		return
	}

	var req updateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	updated, err := h.recipes.Update(r.Context(), userID, id, models.RecipePatch{
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		CookTime:     req.CookTime,
		Cuisine:      req.Cuisine,
		ImageURL:     req.ImageURL,
		Ingredients:  req.Ingredients,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeJSON(updated))
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	id, ok := recipeID(r)
	if !ok {
		writeBadRequest(w, "Invalid recipe id")
		return
	}

	if err := h.recipes.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Recipe deleted"})
}

func (h *RecipeHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	id, ok := recipeID(r)
	if !ok {
		writeBadRequest(w, "Invalid recipe id")
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	summary, err := h.recipes.Rate(r.Context(), userID, id, req.Rating)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ratingJSON{
		AverageRating: summary.AverageRating,
		RatingsCount:  summary.RatingsCount,
	})
}

func (h *RecipeHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	id, ok := recipeID(r)
	if !ok {
		writeBadRequest(w, "Invalid recipe id")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	note, err := h.recipes.AddNote(r.Context(), userID, id, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteJSON(note))
}

func (h *RecipeHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	id, ok := recipeID(r)
	if !ok {
		writeBadRequest(w, "Invalid recipe id")
		return
	}

	notes, err := h.recipes.Notes(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]noteJSON, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteJSON(&notes[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
