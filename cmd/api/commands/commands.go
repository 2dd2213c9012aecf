package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/tmtrack/core/internal/application/services"
	"github.com/tmtrack/core/internal/infrastructure/config"
	"github.com/tmtrack/core/internal/infrastructure/database"
	"github.com/tmtrack/core/internal/infrastructure/logger"
	"github.com/tmtrack/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the tmtrack API server",
		Long:  "Start the tmtrack API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Document store migration commands",
		Long:  "Manage document store migrations: indexes and seed data (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewBackupCommand creates the backup command
func NewBackupCommand() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump the task and category collections to a JSON file",
		Run: func(cmd *cobra.Command, args []string) {
			out, _ := cmd.Flags().GetString("out")
			runBackup(out)
		},
	}
	backupCmd.Flags().String("out", "tmtrack_backup.json", "Path of the backup file to write")
	return backupCmd
}

// NewRestoreCommand creates the restore command
func NewRestoreCommand() *cobra.Command {
	restoreCmd := &cobra.Command{
		Use:   "restore",
		Short: "Load a backup file, replacing the task and category collections",
		Long:  "Load a backup file into the document store. This is destructive: each covered collection is cleared before its documents are inserted.",
		Run: func(cmd *cobra.Command, args []string) {
			in, _ := cmd.Flags().GetString("in")
			if in == "" {
				log.Fatal("An input file is required (--in)")
			}
			runRestore(in)
		},
	}
	restoreCmd.Flags().String("in", "", "Path of the backup file to load (required)")
	return restoreCmd
}

// NewTokenCommand creates the token maintenance command
func NewTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Token table maintenance commands",
	}

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "append <suffix>",
		Short: "Append a suffix to every auth_token in the token table",
		Long:  "Rewrite the token table file with the given suffix appended to every auth_token. The server must be restarted to pick up the new tokens.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			appendTokenSuffix(args[0])
		},
	})

	return tokenCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tmtrack version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("tmtrack v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	db, err := database.NewConnection(cfg.Mongo)
	if err != nil {
		appLogger.Fatal("Failed to connect to document store", "error", err)
	}
	defer db.Close()

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting tmtrack API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatal("Server failed to start", "error", err)
	}
}

func newMigrator() (*migrate.Migrate, *config.Config) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, err := migrate.New("file://migrations", cfg.Mongo.MigrateURL())
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	return m, cfg
}

func runMigration(direction string) {
	m, _ := newMigrator()
	defer m.Close()

	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	m, _ := newMigrator()
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func newBackupService() (*services.BackupService, *database.DB, *logger.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewConnection(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to document store: %v", err)
	}

	return services.NewBackupService(db, appLogger), db, appLogger
}

func runBackup(out string) {
	svc, db, appLogger := newBackupService()
	defer db.Close()
	defer appLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := svc.Backup(ctx, out); err != nil {
		log.Fatalf("Backup failed: %v", err)
	}

	fmt.Printf("Backup written to %s\n", out)
}

func runRestore(in string) {
	svc, db, appLogger := newBackupService()
	defer db.Close()
	defer appLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := svc.Restore(ctx, in); err != nil {
		log.Fatalf("Restore failed: %v", err)
	}

	fmt.Println("Restore completed")
}

// tokenEntry mirrors the token table file layout.
type tokenEntry struct {
	UserID    string `json:"userid"`
	AuthToken string `json:"auth_token"`
}

func appendTokenSuffix(suffix string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	path := cfg.Identity.TokensFile

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read token table %s: %v", path, err)
	}

	var entries []tokenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatalf("Failed to parse token table %s: %v", path, err)
	}

	for i := range entries {
		if entries[i].AuthToken == "" {
			log.Fatalf("Entry for user %q has no auth_token", entries[i].UserID)
		}
		entries[i].AuthToken += suffix
	}

	updated, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		log.Fatalf("Failed to encode token table: %v", err)
	}

	if err := os.WriteFile(path, updated, 0o600); err != nil {
		log.Fatalf("Failed to write token table %s: %v", path, err)
	}

	fmt.Printf("Updated %d auth tokens in %s\n", len(entries), path)
}
