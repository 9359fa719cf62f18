package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// InitDB opens and pings the database. MySQL DSNs are normalised so DATETIME
// columns scan into time.Time in UTC.
func InitDB(driver, dbURL string) (*sql.DB, error) {
	dsn := dbURL
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dbURL)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		// UPDATE reports matched rows, not changed rows
		cfg.ClientFoundRows = true
		dsn = cfg.FormatDSN()
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// one connection: writes serialise and ":memory:" stays a single database
		database.SetMaxOpenConns(1)
	} else {
		database.SetMaxOpenConns(25)
		database.SetMaxIdleConns(5)
		database.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("database is not responding: %w", err)
	}

	return database, nil
}

// RunMigrations creates the schema. The DDL is restricted to the subset MySQL
// and SQLite both accept.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			fullname VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			contact VARCHAR(20) NOT NULL DEFAULT '',
			address VARCHAR(255) NOT NULL DEFAULT '',
			city VARCHAR(100) NOT NULL DEFAULT '',
			country VARCHAR(100) NOT NULL DEFAULT '',
			profile_picture VARCHAR(1000) NOT NULL DEFAULT '',
			admin BOOLEAN NOT NULL DEFAULT FALSE,
			verification_status VARCHAR(20) NOT NULL,
			verification_token_hash VARCHAR(64) NOT NULL DEFAULT '',
			verification_token_expires_at DATETIME,
			reset_token_hash VARCHAR(64) NOT NULL DEFAULT '',
			reset_token_expires_at DATETIME,
			last_login_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description VARCHAR(1000) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS floors (
			id VARCHAR(36) PRIMARY KEY,
			number INT NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL DEFAULT '',
			description VARCHAR(1000) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS shops (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(150) NOT NULL,
			owner_id VARCHAR(36) NOT NULL,
			category_id VARCHAR(36) NOT NULL,
			floor_id VARCHAR(36) NOT NULL,
			address VARCHAR(255) NOT NULL DEFAULT '',
			contact VARCHAR(20) NOT NULL DEFAULT '',
			description VARCHAR(2000) NOT NULL DEFAULT '',
			image VARCHAR(1000) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(150) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			features TEXT NOT NULL,
			shop_id VARCHAR(36) NOT NULL,
			category_id VARCHAR(36) NOT NULL,
			offer_id VARCHAR(36) NOT NULL DEFAULT '',
			description VARCHAR(2000) NOT NULL DEFAULT '',
			image VARCHAR(1000) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS offers (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(150) NOT NULL,
			description VARCHAR(2000) NOT NULL DEFAULT '',
			discount DECIMAL(5,2) NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			shop_id VARCHAR(36) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(36) PRIMARY KEY,
			entity_type VARCHAR(50) NOT NULL,
			entity_id VARCHAR(36) NOT NULL,
			action VARCHAR(50) NOT NULL,
			actor_id VARCHAR(36) NOT NULL DEFAULT '',
			details TEXT,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
