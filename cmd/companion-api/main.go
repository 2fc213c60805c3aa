package main

import (
	"context"
	"net/http"
	"os"

	httpadapter "github.com/MahaveerPandey8290/health-app/internal/adapters/http"
	"github.com/MahaveerPandey8290/health-app/internal/adapters/llm"
	firestorestore "github.com/MahaveerPandey8290/health-app/internal/adapters/storage/firestore"
	memstore "github.com/MahaveerPandey8290/health-app/internal/adapters/storage/memory"
	sqlitestore "github.com/MahaveerPandey8290/health-app/internal/adapters/storage/sqlite"
	"github.com/MahaveerPandey8290/health-app/internal/app/history"
	"github.com/MahaveerPandey8290/health-app/internal/app/session"
	"github.com/MahaveerPandey8290/health-app/internal/config"
	"github.com/MahaveerPandey8290/health-app/internal/domain"
	"github.com/MahaveerPandey8290/health-app/internal/observability"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	observability.Setup(cfg.LogLevel)
	log := observability.Logger()

	// Generation client: mock for dev, Gemini on Vertex otherwise.
	var (
		genClient domain.GenerationClient
		err       error
	)
	if cfg.UseMockLLM {
		log.Info("using mock generation client")
		genClient = llm.NewMockClient()
	} else {
		log.Info("using Gemini generation client", "model", cfg.ModelName)
		genClient, err = llm.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			log.Error("initializing Gemini client failed", "error", err)
			os.Exit(1)
		}
	}

	// Storage: one store implements both the scratch and history ports.
	var (
		scratchStore domain.ScratchStore
		historyStore domain.HistoryStore
	)
	switch cfg.StorageBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Error("COMPANION_GCP_PROJECT is required for the firestore backend")
			os.Exit(1)
		}
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Error("initializing Firestore store failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		scratchStore = store
		historyStore = store

	case "sqlite":
		log.Info("using SQLite storage", "path", cfg.SQLitePath)
		store, err := sqlitestore.NewStore(cfg.SQLitePath)
		if err != nil {
			log.Error("initializing SQLite store failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		scratchStore = store
		historyStore = store

	default:
		log.Info("using in-memory storage")
		scratchStore = memstore.NewScratchStore()
		historyStore = memstore.NewHistoryStore()
	}

	mgr := session.NewManager(genClient, scratchStore, historyStore)
	handler := httpadapter.NewServer(mgr, history.NewService(historyStore))

	addr := ":" + cfg.Port
	log.Info("companion API listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
