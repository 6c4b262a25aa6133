package config

import (
	"flag"
	"os"
	"time"

	"github.com/mvoronkov/recipeshelf/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend REST API (default from Config)
//	-r int      request timeout in seconds (default from Config)
//	-f string   token file path (default from Config)
//	-d int      search debounce in milliseconds (default from Config)
//	-l int      page size for recipe lists (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-f", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend REST API")
	requestTimeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.TokenFile, "f", cfg.TokenFile, "path of the session token file")
	searchDebounce := fs.Int("d", int(cfg.SearchDebounce.Milliseconds()), "search debounce window (in milliseconds)")
	fs.IntVar(&cfg.PageLimit, "l", cfg.PageLimit, "page size for recipe lists")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.SearchDebounce = time.Duration(*searchDebounce) * time.Millisecond
}
