package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"evaluation-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ConnectAndCreateDB creates the configured database when it is missing,
// connects to it and, for a fresh database, applies schema.sql.
func ConnectAndCreateDB(cfg config.PostgresConfig, schemaPath string) (*sqlx.DB, error) {
	defaultConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DBname)

	defaultDB, err := sql.Open("postgres", defaultConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	err = defaultDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		if _, err = defaultDB.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		log.Printf("Database '%s' created successfully", cfg.DBname)
	} else {
		log.Printf("Database '%s' already exists", cfg.DBname)
	}

	targetConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", targetConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}

	if !exists {
		if err := executeSchema(db, schemaPath); err != nil {
			// manual schema setup is still possible
			log.Printf("Warning: Failed to execute schema.sql: %v", err)
		}
	}

	return db, nil
}

// ConnectWithRetry keeps calling ConnectAndCreateDB until it succeeds or ctx
// is done.
func ConnectWithRetry(ctx context.Context, cfg config.PostgresConfig, schemaPath string, wait time.Duration) (*sqlx.DB, error) {
	for {
		db, err := ConnectAndCreateDB(cfg, schemaPath)
		if err == nil {
			return db, nil
		}
		log.Printf("failed to connect database: %s, next retry in %v", err, wait)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection aborted: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

func executeSchema(db *sqlx.DB, schemaPath string) error {
	schemaLocations := []string{
		"schema.sql",
		"/app/schema.sql",
		filepath.Join(os.Getenv("PWD"), "schema.sql"),
	}
	if schemaPath != "" {
		schemaLocations = append([]string{schemaPath}, schemaLocations...)
	}

	var found string
	for _, location := range schemaLocations {
		if _, err := os.Stat(location); err == nil {
			found = location
			break
		}
	}
	if found == "" {
		return fmt.Errorf("schema.sql not found in any expected locations: %v", schemaLocations)
	}

	content, err := os.ReadFile(found)
	if err != nil {
		return fmt.Errorf("failed to read schema.sql from %s: %w", found, err)
	}

	log.Printf("Executing schema from: %s", found)

	successCount := 0
	for i, statement := range splitStatements(string(content)) {
		if _, err := db.Exec(statement); err != nil {
			log.Printf("Warning: Failed to execute statement %d: %v", i+1, err)
			log.Printf("Statement: %s", statement[:min(100, len(statement))])
			continue
		}
		successCount++
	}

	log.Printf("Schema execution completed. Successfully executed %d statements", successCount)
	return nil
}

// splitStatements splits a schema file on ";" dropping blank chunks and
// "--" comment lines.
func splitStatements(schema string) []string {
	var statements []string
	for _, chunk := range strings.Split(schema, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
