// Command migrate applies schema migrations for the tapcard stores. The
// relational store (users, profiles, connections) uses versioned golang-migrate
// files and supports up, down and version. The view event store runs plain
// .sql files and only migrates forward.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tapcard/internal/config"
	"github.com/tapcard/internal/storage"
)

func main() {
	var (
		action = flag.String("action", "up", "up, down or version (down and version are postgres only)")
		dbType = flag.String("db", "postgres", "target store: postgres (users, profiles, connections) or clickhouse (profile view events)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch *dbType {
	case "postgres":
		if err := migrateRelationalStore(cfg, *action); err != nil {
			log.Fatalf("Relational store migration failed: %v", err)
		}
	case "clickhouse":
		if err := migrateViewEventStore(cfg, *action); err != nil {
			log.Fatalf("View event store migration failed: %v", err)
		}
	default:
		log.Fatalf("Unknown store: %s (want postgres or clickhouse)", *dbType)
	}
}

func migrateRelationalStore(cfg *config.Config, action string) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.Database,
	)

	migrationsPath := "migrations/postgres"

	switch action {
	case "up":
		log.Println("Applying relational store migrations...")
		if err := storage.RunMigrations(databaseURL, migrationsPath); err != nil {
			return err
		}
		log.Println("Relational store is up to date")

	case "down":
		log.Println("Rolling back the last relational store migration...")
		if err := storage.RollbackMigrations(databaseURL, migrationsPath); err != nil {
			return err
		}
		log.Println("Rolled back one migration")

	case "version":
		version, dirty, err := storage.MigrationVersion(databaseURL, migrationsPath)
		if err != nil {
			return err
		}
		log.Printf("Relational store schema version: %d (dirty: %v)", version, dirty)

	default:
		return fmt.Errorf("unknown action: %s", action)
	}

	return nil
}

func migrateViewEventStore(cfg *config.Config, action string) error {
	if action != "up" {
		return fmt.Errorf("the view event store only migrates forward; use -action up")
	}

	log.Println("Connecting to the view event store...")
	db, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	if err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing ClickHouse connection: %v", err)
		}
	}()

	migrationsPath := "migrations/clickhouse"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory not found: %s", migrationsPath)
	}

	log.Println("Applying view event store migrations...")
	if err := storage.RunClickHouseMigrations(db, migrationsPath); err != nil {
		return err
	}

	log.Println("View event store is up to date")
	return nil
}
