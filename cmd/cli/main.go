package main

import (
	"os"
	"strings"

	"github.com/nimasrn/debt-ledger/internal/config"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/pg"
)

// main.go --env=.env --dir=./migrations
func main() {
	err := config.Load(argValue("--env=", ".env"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dir := argValue("--dir=", "./migrations")
	if dir == "" {
		logger.Error("migration: no migrations directory")
		os.Exit(1)
	}
	if err = pg.Migrate(config.Get().WriteDB(), dir); err != nil {
		logger.Error("migration: error running migrations", "error", err)
		os.Exit(1)
	}
}

// argValue returns the value of a --flag=value argument, or fallback when
// the flag is absent. A path that does not exist yields "".
func argValue(prefix, fallback string) string {
	path := fallback
	for _, v := range os.Args {
		if p, ok := strings.CutPrefix(v, prefix); ok {
			path = p
			break
		}
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("path not found", "flag", strings.TrimSuffix(prefix, "="), "path", path)
		return ""
	}
	return path
}
