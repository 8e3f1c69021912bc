package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wildhacks-2025/app/internal/api"
	"github.com/wildhacks-2025/app/internal/db"
	"github.com/wildhacks-2025/app/internal/middleware"
	"github.com/wildhacks-2025/app/internal/utils"
)

func main() {
	// Local .env is optional; real deployments inject the environment.
	_ = godotenv.Load()

	addr := utils.SafeEnv("COCOON_ADDR", ":8080")
	sqlitePath := utils.SafeEnv("COCOON_SQLITE_PATH", "data/cocoon.db")
	migrationsDir := os.Getenv("COCOON_MIGRATIONS_DIR")
	commit := os.Getenv("COCOON_COMMIT")
	buildTime := os.Getenv("COCOON_BUILD_TIME")

	if export := os.Getenv("COCOON_LEGACY_EXPORT"); export != "" {
		if err := ImportLegacyIfNeeded(export, sqlitePath, migrationsDir); err != nil {
			log.Fatalf("legacy import: %v", err)
		}
	}

	store, closeStore, err := openStore(sqlitePath, migrationsDir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	mux := http.NewServeMux()
	api.NewRouter(store, middleware.SignToken).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Cocoon API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Serve the built mobile-web bundle when present.
	if staticDir := os.Getenv("COCOON_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.CORS(
		middleware.SecureHeaders(
			middleware.NoStore(
				middleware.LocaleMiddleware(
					middleware.WithAuth(mux)))))

	log.Printf("Cocoon server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore builds the persistence layer. COCOON_MEMORY=true or an empty
// path keeps everything in process, which suits throwaway dev runs.
func openStore(sqlitePath, migrationsDir string) (api.Store, func(), error) {
	if sqlitePath == "" || utils.SafeEnvBool("COCOON_MEMORY", false) {
		return api.NewMemoryStore(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.RunMigrations(conn, migrationsDir); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	store, err := db.NewStore(conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("close sqlite: %v", cerr)
		}
	}
	return store, closeFn, nil
}
