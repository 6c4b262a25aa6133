// Package config loads runtime configuration for the RecipeShelf CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-r int      request timeout (seconds)
//	-f string   path of the file the session token is persisted to
//	-d int      search debounce window (milliseconds)
//	-l int      page size for recipe lists
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "500ms" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "request_timeout": "10s",
//	  "token_file": "/home/user/.recipeshelf/token",
//	  "search_debounce": "500ms",
//	  "page_limit": 12
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
