package main

import (
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	gorilla "github.com/gorilla/handlers"

	"github.com/Susanth-Aluru/to-do-web/auth"
	"github.com/Susanth-Aluru/to-do-web/config"
	"github.com/Susanth-Aluru/to-do-web/handlers"
	"github.com/Susanth-Aluru/to-do-web/storage"
	"github.com/Susanth-Aluru/to-do-web/tasks"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "todo",
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "err", err)
	}

	store := storage.New(cfg.DataDir)
	if err := store.Init(); err != nil {
		logger.Fatal("init storage", "err", err)
	}

	a := auth.New(store, cfg.BcryptCost)
	h := handlers.NewHandlers(store, a, tasks.NewStore(store), logger)
	h.StaticDir = cfg.StaticDir

	// the front end may live on another origin during development
	cors := gorilla.CORS(
		gorilla.AllowedOrigins([]string{"*"}),
		gorilla.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilla.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gorilla.AllowCredentials(),
	)
	server := gorilla.LoggingHandler(os.Stdout, cors(h.Router()))

	logger.Info("server listening", "addr", cfg.Addr, "data", cfg.DataDir)
	if err := http.ListenAndServe(cfg.Addr, server); err != nil {
		logger.Fatal("server exited", "err", err)
	}
}
