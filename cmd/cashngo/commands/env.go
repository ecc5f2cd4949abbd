package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/api"
	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/catalog"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/storage"
	"github.com/teranos/cashngo/unlock"
)

// env is everything a command needs to work on the shared store
type env struct {
	cfg       *am.Config
	dbPath    string
	verbosity int
	opened    *storage.Opened
	cols      *storage.Collections
	board     *board.Board
}

// openEnv loads configuration and opens the store.
// Database path priority: --db-path flag > DB_PATH env > config > cashngo.db
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	dbPath, _ := cmd.Flags().GetString("db-path")
	if dbPath == "" {
		path, err := am.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		dbPath = path
	}
	if dbPath == "" {
		dbPath = "cashngo.db"
	}

	opened, err := storage.Open(cmd.Context(), cfg, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open store")
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	opened.Store.SetVerbosity(verbosity)
	cols := storage.NewCollections(opened.Store)
	return &env{
		cfg:       cfg,
		dbPath:    dbPath,
		verbosity: verbosity,
		opened:    opened,
		cols:      cols,
		board:     board.New(cols, board.OptionsFromConfig(cfg.Board)),
	}, nil
}

func (e *env) Close() {
	if err := e.opened.Store.Close(); err != nil {
		logger.Warnw("Failed to close store", logger.FieldError, err)
	}
}

// catalog builds the catalog service, confirming unlocks with the API when configured
func (e *env) catalog() *catalog.Service {
	client := api.NewFromConfig(e.cfg.API)
	var confirmer unlock.Confirmer
	if e.cfg.API.ConfirmQuiz {
		confirmer = client
	}
	return catalog.New(client, unlock.NewGate(confirmer), e.board)
}

// withEnv opens the env for the duration of fn
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(cmd.Context(), e)
}
