// Package cli provides the interactive RecipeShelf command-line client.
//
// It wires configuration, token storage, the REST API client, the session
// and collection stores, and an interactive REPL. Typical flow: restore the
// previous session from the token file, fetch the profile if needed, and
// execute user commands.
//
// Key features:
//   - Register / Login / Logout with a persisted session token
//   - Browse community and own recipes with search and pagination
//   - Show, create, update, delete and rate recipes
//   - Attach personal notes to recipes
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
