// REPL binary for interactively querying in-memory tables.
//
// Tables are loaded from CSV files (COPY ... FROM) or imported from live
// databases (\load) and queried with SQL. Configuration (env vars):
//
//	QUARRY_LOG=debug|info|warn  (optional, default warn)
//
// Usage:
//
//	go run ./cmd/repl [file.csv ...]
//
// Each CSV argument is registered as a table named after the file's base
// name.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/sirupsen/logrus"

	"github.com/bawdo/quarry"
)

func main() {
	log := logrus.New()
	log.SetLevel(logLevel())

	ctx := quarry.NewContext(nil)
	sess := NewSession(ctx, log)

	for _, path := range os.Args[1:] {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := sess.loadCSV(name, path); err != nil {
			log.WithError(err).Warnf("skipping %s", path)
			continue
		}
		fmt.Printf("[Config] Loaded %s as table %q\n", path, name)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          "quarry> ",
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		AutoComplete:    &replCompleter{sess: sess},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Println()
	fmt.Println("Quarry REPL — type 'help' for commands, 'exit' to quit")
	fmt.Println()

	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := sess.Execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

func logLevel() logrus.Level {
	switch strings.ToLower(os.Getenv("QUARRY_LOG")) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}

func historyPath() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(u.HomeDir, ".quarry_history")
}
