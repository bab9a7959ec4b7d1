package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// InitPostgres opens the sqlx handle used by the raw SQL repositories,
// retrying while the database container comes up.
func InitPostgres(dsn string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres: %w", err)
}

// WrapGorm exposes the connection pool of an existing gorm handle through sqlx.
// Used when running on SQLite, where a second pool would see a different database.
func WrapGorm(g *gorm.DB, driverName string) (*sqlx.DB, error) {
	sqlDB, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql pool: %w", err)
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
