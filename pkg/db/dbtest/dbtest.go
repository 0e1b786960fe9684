// Package dbtest opens throwaway in-memory sqlite databases carrying the
// application schema, for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		external_id TEXT NOT NULL,
		email TEXT NOT NULL,
		name TEXT NULL,
		image_url TEXT NULL,
		phone TEXT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		created_at DATETIME,
		updated_at DATETIME,
		CONSTRAINT users_external_id_key UNIQUE (external_id)
	)`,
	`CREATE TABLE cars (
		id TEXT PRIMARY KEY,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		year INTEGER NOT NULL,
		price NUMERIC NOT NULL,
		mileage INTEGER NOT NULL,
		color TEXT NOT NULL,
		fuel_type TEXT NOT NULL,
		transmission TEXT NOT NULL,
		body_type TEXT NOT NULL,
		seats INTEGER NULL,
		description TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		featured BOOLEAN NOT NULL DEFAULT 0,
		images TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE saved_cars (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		car_id TEXT NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
		saved_at DATETIME,
		CONSTRAINT saved_cars_user_car_key UNIQUE (user_id, car_id)
	)`,
	`CREATE TABLE dealership_infos (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE working_hours (
		id TEXT PRIMARY KEY,
		dealership_id TEXT NOT NULL REFERENCES dealership_infos(id) ON DELETE CASCADE,
		day_of_week TEXT NOT NULL,
		open_time TEXT NOT NULL,
		close_time TEXT NOT NULL,
		is_open BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		CONSTRAINT working_hours_dealership_day_key UNIQUE (dealership_id, day_of_week)
	)`,
}

// Open returns a fresh database with the full schema. Each call gets its own
// named in-memory database so tests never share rows.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:autoyard_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
