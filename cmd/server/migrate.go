package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/wildhacks-2025/app/internal/db"
	"github.com/wildhacks-2025/app/internal/services"
)

// legacyExport mirrors the JSON file the mobile client produces when a
// user exports their on-device data. The payload keys are the client's
// storage keys.
type legacyExport struct {
	Email    string                   `json:"email"`
	Password string                   `json:"password"`
	Profile  *services.Profile        `json:"@safespace_user_data"`
	Logs     []*services.EncounterLog `json:"@cocoon_encounter_logs"`
}

// ImportLegacyIfNeeded loads a client export into a fresh database. It is
// a no-op when the database file already exists, so it only ever runs on
// first start.
func ImportLegacyIfNeeded(exportPath, sqlitePath, migrationsDir string) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil // already imported
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}

	raw, err := os.ReadFile(exportPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read legacy export: %w", err)
	}
	var export legacyExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return fmt.Errorf("parse legacy export: %w", err)
	}
	if strings.TrimSpace(export.Email) == "" || export.Password == "" {
		return errors.New("legacy export must carry email and password for the new account")
	}

	log.Printf("First run detected, importing legacy export %s...", exportPath)

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
	}()

	if err := db.RunMigrations(conn, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	dst, err := db.NewSQLiteStore(conn)
	if err != nil {
		return fmt.Errorf("init sqlite store: %w", err)
	}
	if err := copyExportToStore(&export, dst); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}

	log.Printf("Legacy import completed successfully.")
	return nil
}

func copyExportToStore(export *legacyExport, dst *db.SQLiteStore) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(export.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &services.User{
		ID:        "u" + strings.ReplaceAll(uuid.NewString(), "-", "")[:7],
		Email:     strings.ToLower(strings.TrimSpace(export.Email)),
		PassHash:  hash,
		CreatedAt: now,
	}
	if err := dst.AddUser(user); err != nil {
		return err
	}

	if export.Profile != nil {
		p := *export.Profile
		p.UserID = user.ID
		p.UpdatedAt = now
		if err := dst.UpsertProfile(&p); err != nil {
			return err
		}
	}
	for _, lg := range export.Logs {
		if lg == nil {
			continue
		}
		entry := *lg
		if entry.ID == "" {
			entry.ID = "log" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		}
		entry.UserID = user.ID
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := dst.InsertEncounter(&entry); err != nil {
			return err
		}
	}
	dst.AddAudit(services.AuditEntry{
		Time:   now,
		Actor:  user.ID,
		Action: "legacy_import",
		Note:   fmt.Sprintf("%d encounter logs", len(export.Logs)),
	})
	return nil
}
