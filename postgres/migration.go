package postgres

import (
	"database/sql"
	"github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal request flow, either at
// initial startup or from an external tool.

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1",
			Up: []string{
				`CREATE TABLE collection (
					id TEXT PRIMARY KEY,
					seq BIGSERIAL,
					doc BYTEA NOT NULL
				)`,
				`CREATE TABLE job (
					id TEXT PRIMARY KEY,
					seq BIGSERIAL,
					owner TEXT NOT NULL,
					status TEXT NOT NULL,
					process BYTEA NOT NULL,
					title TEXT NOT NULL,
					description TEXT NOT NULL,
					plan TEXT NOT NULL,
					budget DOUBLE PRECISION,
					options BYTEA NOT NULL,
					progress DOUBLE PRECISION,
					costs DOUBLE PRECISION,
					created TIMESTAMP WITH TIME ZONE NOT NULL,
					updated TIMESTAMP WITH TIME ZONE
				)`,
				`CREATE INDEX job_owner ON job(owner)`,
				`CREATE TABLE job_log (
					seq BIGSERIAL PRIMARY KEY,
					job_id TEXT NOT NULL
						REFERENCES job(id) ON DELETE CASCADE,
					entry_id TEXT NOT NULL,
					level TEXT NOT NULL,
					message TEXT NOT NULL,
					path BYTEA NOT NULL
				)`,
				`CREATE INDEX job_log_job ON job_log(job_id)`,
				`CREATE TABLE job_result (
					seq BIGSERIAL PRIMARY KEY,
					job_id TEXT NOT NULL
						REFERENCES job(id) ON DELETE CASCADE,
					name TEXT NOT NULL,
					media_type TEXT NOT NULL,
					content BYTEA NOT NULL
				)`,
				`CREATE INDEX job_result_job ON job_result(job_id)`,
				`CREATE TABLE service (
					id TEXT PRIMARY KEY,
					seq BIGSERIAL,
					type TEXT NOT NULL,
					url TEXT NOT NULL,
					enabled BOOLEAN NOT NULL,
					process BYTEA NOT NULL,
					configuration BYTEA NOT NULL,
					attributes BYTEA NOT NULL,
					title TEXT NOT NULL,
					description TEXT NOT NULL,
					plan TEXT NOT NULL,
					budget DOUBLE PRECISION,
					costs DOUBLE PRECISION,
					created TIMESTAMP WITH TIME ZONE NOT NULL
				)`,
			},
			Down: []string{
				`DROP TABLE service`,
				`DROP TABLE job_result`,
				`DROP TABLE job_log`,
				`DROP TABLE job`,
				`DROP TABLE collection`,
			},
		},
		{
			// The executor claim query scans for the oldest queued
			// job; a partial index keeps it off the job_owner index
			Id: "2",
			Up: []string{
				`CREATE INDEX job_queued ON job(seq) WHERE status='queued'`,
			},
			Down: []string{
				`DROP INDEX job_queued`,
			},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}
