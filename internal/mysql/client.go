// Package mysql opens the pooled connection backing the sensor catalog.
// The catalog is optional; without MySQL configuration the fleet falls
// back to the built-in defaults.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sqldriver "github.com/go-sql-driver/mysql"
)

// Config maps connection settings for the MySQL instance.
type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Configured reports whether the environment opts into the catalog.
func Configured() bool {
	return os.Getenv("MYSQL_HOST") != ""
}

// FromEnv constructs Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Host:            os.Getenv("MYSQL_HOST"),
		Port:            defaultString(os.Getenv("MYSQL_PORT"), "3306"),
		User:            os.Getenv("MYSQL_USER"),
		Password:        os.Getenv("MYSQL_PASSWORD"),
		Database:        os.Getenv("MYSQL_DATABASE"),
		MaxOpenConns:    parseInt(os.Getenv("MYSQL_MAX_OPEN_CONNS"), 10),
		MaxIdleConns:    parseInt(os.Getenv("MYSQL_MAX_IDLE_CONNS"), 5),
		ConnMaxLifetime: parseDuration(os.Getenv("MYSQL_CONN_MAX_LIFETIME"), 30*time.Minute),
		PingTimeout:     parseDuration(os.Getenv("MYSQL_PING_TIMEOUT"), 5*time.Second),
	}

	if cfg.Host == "" || cfg.User == "" || cfg.Database == "" {
		return Config{}, errors.New("incomplete MySQL configuration: provide MYSQL_HOST, MYSQL_USER, MYSQL_DATABASE")
	}

	return cfg, nil
}

// New opens a pooled MySQL connection and validates connectivity.
func New(ctx context.Context, cfg Config) (*sql.DB, error) {
	driverCfg := sqldriver.NewConfig()
	driverCfg.Net = "tcp"
	driverCfg.Addr = fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	driverCfg.User = cfg.User
	driverCfg.Passwd = cfg.Password
	driverCfg.DBName = cfg.Database
	driverCfg.ParseTime = true

	db, err := sql.Open("mysql", driverCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctxPing := ctx
	if cfg.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctxPing, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctxPing); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return db, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
