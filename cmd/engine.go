package cmd

import (
	"log"
	"os"

	"timepunch/config"
	"timepunch/remote"
	"timepunch/storage"
	"timepunch/syncq"
	"timepunch/timerctl"
)

// engine bundles the wired tracking core for one command invocation.
type engine struct {
	cfg        *config.Config
	store      *storage.SQLiteStore
	queue      *syncq.Queue
	controller *timerctl.Controller
}

func (e *engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// buildEngine wires the remote client, shift directory, local store, sync
// queue, and timer controller from the active configuration. dbOverride
// takes precedence over the configured storage path when set.
func buildEngine(dbOverride string) (*engine, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}

	client, err := remote.NewClient(remote.ClientConfig{
		BaseURL:   cfg.Service.URL,
		AuthToken: cfg.Service.Token,
		UserAgent: "timepunch/1.0",
		Timeout:   cfg.Service.Timeout(),
	})
	if err != nil {
		return nil, err
	}

	directory, err := remote.NewDirectory(remote.ClientConfig{
		BaseURL:   cfg.DirectoryURL(),
		AuthToken: cfg.Service.Token,
		UserAgent: "timepunch/1.0",
		Timeout:   cfg.Service.Timeout(),
	})
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.Path
	if dbOverride != "" {
		dbPath = dbOverride
	}
	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "timepunch: ", log.LstdFlags)
	queue := syncq.New(client, store, syncq.Options{
		Timeout: cfg.Service.Timeout(),
		Logger:  logger,
	})
	controller := timerctl.New(queue, directory, timerctl.Options{Logger: logger})

	return &engine{
		cfg:        cfg,
		store:      store,
		queue:      queue,
		controller: controller,
	}, nil
}

// attachActiveSession loads the user's persisted in-progress entry into the
// controller, if one exists. Fresh CLI processes need this before stop or
// status can see a timer started by an earlier invocation.
func (e *engine) attachActiveSession(userID string) (bool, error) {
	entry, found, err := e.queue.ActiveEntry(userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := e.controller.Attach(entry); err != nil {
		return false, err
	}
	return true, nil
}
