package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mvoronkov/recipeshelf/internal/client/api"
	"github.com/mvoronkov/recipeshelf/internal/client/dispatch"
	"github.com/mvoronkov/recipeshelf/internal/client/models"
	"github.com/mvoronkov/recipeshelf/internal/client/query"
	"github.com/mvoronkov/recipeshelf/internal/client/recipes"
)

// pollInterval is how often browse commands re-check the cache while a fetch
// is in flight.
const pollInterval = 25 * time.Millisecond

// List switches to the community tab and prints the first page.
func (a *App) List(ctx context.Context) error {
	a.queries.SetTab(ctx, query.TabAll)
	return a.printActiveList(ctx)
}

// Mine switches to the own-recipes tab and prints the first page.
func (a *App) Mine(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to list your recipes.")
		return nil
	}
	a.queries.SetTab(ctx, query.TabMine)
	return a.printActiveList(ctx)
}

// Search prompts for a term and fetches the first matching page of the
// active tab.
func (a *App) Search(ctx context.Context) error {
	term, err := getSimpleText(a.reader, "Search for", os.Stdout)
	if err != nil {
		return err
	}
	a.queries.SetSearchInput(ctx, term)

	// The fetch fires once the debounce window closes; wait for that commit
	// before printing so the list reflects the new term.
	err = a.waitFor(ctx, func(s recipes.Snapshot) bool { return s.SearchQuery == term })
	if err != nil {
		return err
	}
	return a.printActiveList(ctx)
}

// Page prompts for a page number and fetches it for the active tab.
func (a *App) Page(ctx context.Context) error {
	page, ok, err := GetInt(a.reader, "Page number", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	a.queries.SetPage(ctx, page)
	return a.printActiveList(ctx)
}

// Show prompts for a recipe id and prints its full detail.
func (a *App) Show(ctx context.Context) error {
	id, err := a.promptID("Enter recipe id to show")
	if err != nil {
		return err
	}

	a.queries.FetchDetail(ctx, id)
	if err := a.waitFor(ctx, func(s recipes.Snapshot) bool { return !s.CurrentLoading }); err != nil {
		return err
	}

	snap := a.cache.Snapshot()
	if snap.CurrentError != "" {
		fmt.Println(snap.CurrentError)
		return nil
	}
	if snap.Current == nil {
		fmt.Println("Recipe not found.")
		return nil
	}
	printRecipeDetail(snap.Current)
	return nil
}

// Create collects recipe fields interactively and submits them.
func (a *App) Create(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to create recipes.")
		return nil
	}

	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description", os.Stdout)
	if err != nil {
		return err
	}
	ingredients, err := GetLines(a.reader, "Ingredients, one per line", os.Stdout)
	if err != nil {
		return err
	}
	instructions, err := GetMultiline(a.reader, "Instructions:", os.Stdout)
	if err != nil {
		return err
	}
	cookTime, _, err := GetInt(a.reader, "Cook time in minutes (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	imageURL, err := getSimpleText(a.reader, "Image URL (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.dispatch.Create(ctx, models.RecipeData{
		Title:        title,
		Description:  description,
		Instructions: instructions,
		Ingredients:  ingredients,
		CookTime:     cookTime,
		ImageURL:     imageURL,
	})
	if err != nil {
		printMutationError(err)
		return nil
	}

	fmt.Printf("Created recipe %d: %s\n", created.ID, created.Title)
	return nil
}

// Update prompts for a recipe id and new field values; empty answers keep
// the current value.
func (a *App) Update(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to update recipes.")
		return nil
	}

	id, err := a.promptID("Enter recipe id to update")
	if err != nil {
		return err
	}

	var patch models.RecipeUpdate

	title, err := getSimpleText(a.reader, "New title (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if title != "" {
		patch.Title = &title
	}

	description, err := getSimpleText(a.reader, "New description (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if description != "" {
		patch.Description = &description
	}

	instructions, err := GetMultiline(a.reader, "New instructions (empty to keep):", os.Stdout)
	if err != nil {
		return err
	}
	if instructions != "" {
		patch.Instructions = &instructions
	}

	ingredients, err := GetLines(a.reader, "New ingredients, one per line (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if len(ingredients) > 0 {
		patch.Ingredients = &ingredients
	}

	updated, err := a.dispatch.Update(ctx, id, patch)
	if err != nil {
		printMutationError(err)
		return nil
	}

	fmt.Printf("Updated recipe %d: %s\n", updated.ID, updated.Title)
	return nil
}

// Delete prompts for a recipe id and removes it.
func (a *App) Delete(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to delete recipes.")
		return nil
	}

	id, err := a.promptID("Enter recipe id to delete")
	if err != nil {
		return err
	}

	if err := a.dispatch.Delete(ctx, id); err != nil {
		printMutationError(err)
		return nil
	}

	fmt.Println("Deleted.")
	return nil
}

// Rate prompts for a recipe id and a 1..5 rating.
func (a *App) Rate(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to rate recipes.")
		return nil
	}

	id, err := a.promptID("Enter recipe id to rate")
	if err != nil {
		return err
	}

	rating, ok, err := GetInt(a.reader, "Rating (1-5)", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	result, err := a.dispatch.Rate(ctx, id, rating)
	if err != nil {
		printMutationError(err)
		return nil
	}

	fmt.Printf("Rated. Average is now %.1f (%d ratings)\n", result.AverageRating, result.RatingsCount)
	return nil
}

// AddNote prompts for a recipe id and a note body.
func (a *App) AddNote(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to add notes.")
		return nil
	}

	id, err := a.promptID("Enter recipe id")
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Note:", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.dispatch.AddNote(ctx, id, content); err != nil {
		printMutationError(err)
		return nil
	}

	fmt.Println("Note added.")
	return nil
}

// Notes prompts for a recipe id and lists the user's notes on it.
func (a *App) Notes(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to list notes.")
		return nil
	}

	id, err := a.promptID("Enter recipe id")
	if err != nil {
		return err
	}

	notes, err := a.dispatch.Notes(ctx, id)
	if err != nil {
		printMutationError(err)
		return nil
	}

	if len(notes) == 0 {
		fmt.Println("No notes.")
		return nil
	}
	for _, n := range notes {
		fmt.Printf("[%s] %s\n", n.CreatedAt.Format("2006-01-02"), n.Content)
	}
	return nil
}

func (a *App) promptID(prompt string) (int64, error) {
	text, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a recipe id: %q", text)
	}
	return id, nil
}

// waitFor blocks until the cache snapshot satisfies the predicate or the
// request timeout elapses. Browse fetches run on background goroutines, so
// commands poll the cache for the settled state before printing it.
func (a *App) waitFor(ctx context.Context, done func(recipes.Snapshot) bool) error {
	deadline := time.Now().Add(a.config.RequestTimeout + time.Second)
	for {
		if done(a.cache.Snapshot()) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for the server")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (a *App) printActiveList(ctx context.Context) error {
	tab := a.queries.State().Tab

	err := a.waitFor(ctx, func(s recipes.Snapshot) bool {
		if tab == query.TabMine {
			return !s.MineLoading
		}
		return !s.AllLoading
	})
	if err != nil {
		return err
	}

	snap := a.cache.Snapshot()
	items := snap.All
	listErr := snap.AllError
	if tab == query.TabMine {
		items = snap.Mine
		listErr = snap.MineError
	}

	if listErr != "" {
		fmt.Println(listErr)
		return nil
	}
	if len(items) == 0 {
		fmt.Println("No recipes.")
		return nil
	}

	for _, r := range items {
		author := ""
		if r.Author.Username != "" {
			author = " by " + r.Author.Username
		}
		fmt.Printf("%4d  %-40s %.1f★ (%d)%s\n", r.ID, r.Title, r.AverageRating, r.RatingsCount, author)
	}
	p := snap.Pagination
	if p.TotalPages > 1 {
		fmt.Printf("Page %d of %d (%d recipes)\n", p.Page, p.TotalPages, p.Total)
	}
	return nil
}

func printRecipeDetail(r *models.Recipe) {
	fmt.Println(r.Title)
	if r.Author.Username != "" {
		fmt.Printf("by %s\n", r.Author.Username)
	}
	if r.Description != "" {
		fmt.Println(r.Description)
	}
	if r.CookTime > 0 {
		fmt.Printf("Cook time: %d min\n", r.CookTime)
	}
	fmt.Printf("Rating: %.1f (%d ratings)\n", r.AverageRating, r.RatingsCount)

	if len(r.Ingredients) > 0 {
		fmt.Println("Ingredients:")
		for _, ing := range r.Ingredients {
			fmt.Printf("  - %s\n", ing.Display())
		}
	}
	if len(r.Instructions) > 0 {
		fmt.Println("Instructions:")
		for i, step := range r.Instructions {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	}
}

// printMutationError renders dispatcher failures: client-side validation,
// server-side field errors, or a plain message.
func printMutationError(err error) {
	var verr *dispatch.ValidationError
	if errors.As(err, &verr) {
		fmt.Println("Please fix the following:")
		for field, msg := range verr.Fields {
			fmt.Printf("  %s: %s\n", field, msg)
		}
		return
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.Message)
		for field, msg := range apiErr.FieldErrors {
			fmt.Printf("  %s: %s\n", field, msg)
		}
		return
	}

	fmt.Println(err.Error())
}
