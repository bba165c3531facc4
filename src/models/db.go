// Copyright 2016 NDP Systèmes. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var adapters = make(map[string]dbAdapter)

// ConnectionParams are the database agnostic parameters to connect to the database
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type dbAdapter interface {
	// connectionString returns the connection string for the given parameters
	connectionString(ConnectionParams) string
	// typeSQL returns the SQL type string of the given column type,
	// including NULL constraints and defaults.
	typeSQL(typ columnType) string
	// quoteName returns the given table or column name with sql quotes
	quoteName(string) string
	// tables returns a map of table names of the database
	tables(ctx context.Context, db *sqlx.DB) (map[string]bool, error)
	// columns returns the set of column names of the given table
	columns(ctx context.Context, db *sqlx.DB, table string) (map[string]bool, error)
	// indexExists returns true if an index with the given name exists in the given table
	indexExists(ctx context.Context, db *sqlx.DB, table, name string) (bool, error)
	// createIndexSQL returns the SQL statement creating the given index
	createIndexSQL(table string, idx index) string
	// isolationLevel returns the isolation level of the transactions
	isolationLevel() sql.IsolationLevel
	// isSerializationError returns true if the given error is a serialization error
	// and that the failed transaction should be retried.
	isSerializationError(err error) bool
}

// registerDBAdapter adds a adapter to the adapters registry
// name of the adapter should match the database/sql driver name
func registerDBAdapter(name string, adapter dbAdapter) {
	adapters[name] = adapter
}

// Cursor is a wrapper around a database transaction
type Cursor struct {
	tx *sqlx.Tx
}

// Execute a query without returning any rows.
// The args are for any placeholder parameters in the query.
func (c *Cursor) Execute(query string, args ...interface{}) (sql.Result, error) {
	query, args, err := sanitizeQuery(c.tx.DriverName(), query, args...)
	if err != nil {
		return nil, err
	}
	t := time.Now()
	res, err := c.tx.Exec(query, args...)
	return res, logSQLResult(err, t, query, args...)
}

// NamedExecute executes a query with named parameters taken from arg.
func (c *Cursor) NamedExecute(query string, arg interface{}) (sql.Result, error) {
	t := time.Now()
	res, err := c.tx.NamedExec(query, arg)
	return res, logSQLResult(err, t, query, arg)
}

// Get queries a row into the database and maps the result into dest.
// The query must return only one row.
func (c *Cursor) Get(dest interface{}, query string, args ...interface{}) error {
	query, args, err := sanitizeQuery(c.tx.DriverName(), query, args...)
	if err != nil {
		return err
	}
	t := time.Now()
	err = c.tx.Get(dest, query, args...)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return logSQLResult(err, t, query, args...)
}

// Select queries multiple rows and map the result into dest which must be a slice.
func (c *Cursor) Select(dest interface{}, query string, args ...interface{}) error {
	query, args, err := sanitizeQuery(c.tx.DriverName(), query, args...)
	if err != nil {
		return err
	}
	t := time.Now()
	err = c.tx.Select(dest, query, args...)
	return logSQLResult(err, t, query, args...)
}

// sanitizeQuery calls 'In' expansion and 'Rebind' on the given query and
// returns the new values to use.
func sanitizeQuery(driverName, query string, args ...interface{}) (string, []interface{}, error) {
	q, newArgs, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, errors.Wrapf(err, "unable to expand 'IN' statement in %s", query)
	}
	q = sqlx.Rebind(sqlx.BindType(driverName), q)
	return q, newArgs, nil
}

// logSQLResult logs the result of the given sql query started at start
// time with the given args, and error. It returns err wrapped with the query.
func logSQLResult(err error, start time.Time, query string, args ...interface{}) error {
	logCtx := log.New("query", query, "args", args, "duration", time.Since(start))
	if err != nil {
		logCtx.Error("Error while executing query", "error", err)
		return errors.Wrap(err, "error while executing query")
	}
	logCtx.Debug("Query executed")
	return nil
}

// An SQLStore is a Store backed by an SQL database
type SQLStore struct {
	db      *sqlx.DB
	adapter dbAdapter
}

// DBConnect connects to a database using the given driver and arguments.
func DBConnect(driver string, params ConnectionParams) (*SQLStore, error) {
	adapter, ok := adapters[driver]
	if !ok {
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
	connData := adapter.connectionString(params)
	db, err := sqlx.Connect(driver, connData)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to %s database %s", driver, params.DBName)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	log.Info("Connected to database", "driver", driver, "host", params.Host, "name", params.DBName)
	return &SQLStore{db: db, adapter: adapter}, nil
}

// DB returns the underlying sqlx database handle
func (s *SQLStore) DB() *sqlx.DB {
	return s.db
}

// Close is a wrapper around sqlx.Close
// It closes the connection to the database
func (s *SQLStore) Close() error {
	err := s.db.Close()
	log.Info("Closed database", "error", err)
	return err
}

var _ Store = new(SQLStore)
