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
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type postgresAdapter struct{}

var pgTypes = map[columnType]string{
	idColumn:       "varchar(64) PRIMARY KEY",
	charColumn:     "varchar NOT NULL DEFAULT ''",
	textColumn:     "text NOT NULL DEFAULT ''",
	boolColumn:     "boolean NOT NULL DEFAULT FALSE",
	intColumn:      "integer NOT NULL DEFAULT 0",
	nullIntColumn:  "integer",
	dateTimeColumn: "timestamp without time zone",
	dateColumn:     "date",
}

// connectionString returns the connection string for the given parameters
func (d *postgresAdapter) connectionString(params ConnectionParams) string {
	connectString := fmt.Sprintf("dbname=%s", params.DBName)
	if params.SSLMode != "" {
		connectString += fmt.Sprintf(" sslmode=%s", params.SSLMode)
	}
	if params.User != "" {
		connectString += fmt.Sprintf(" user=%s", params.User)
	}
	if params.Password != "" {
		connectString += fmt.Sprintf(" password=%s", params.Password)
	}
	if params.Host != "" {
		connectString += fmt.Sprintf(" host=%s", params.Host)
	}
	if params.Port != "" && params.Port != "5432" {
		connectString += fmt.Sprintf(" port=%s", params.Port)
	}
	return connectString
}

// typeSQL returns the sql type string for the given column type
func (d *postgresAdapter) typeSQL(typ columnType) string {
	return pgTypes[typ]
}

// quoteName returns the given name with sql quotes
func (d *postgresAdapter) quoteName(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

// tables returns a map of table names of the database
func (d *postgresAdapter) tables(ctx context.Context, db *sqlx.DB) (map[string]bool, error) {
	var resList []string
	query := "SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('pg_catalog', 'information_schema')"
	if err := db.SelectContext(ctx, &resList, query); err != nil {
		return nil, err
	}
	res := make(map[string]bool, len(resList))
	for _, tableName := range resList {
		res[tableName] = true
	}
	return res, nil
}

// columns returns the set of column names of the given table
func (d *postgresAdapter) columns(ctx context.Context, db *sqlx.DB, tableName string) (map[string]bool, error) {
	var colNames []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema') AND table_name = $1`
	if err := db.SelectContext(ctx, &colNames, query, tableName); err != nil {
		return nil, err
	}
	res := make(map[string]bool, len(colNames))
	for _, col := range colNames {
		res[col] = true
	}
	return res, nil
}

// indexExists returns true if an index with the given name exists in the given table
func (d *postgresAdapter) indexExists(ctx context.Context, db *sqlx.DB, table, name string) (bool, error) {
	var cnt int
	err := db.GetContext(ctx, &cnt, "SELECT COUNT(*) FROM pg_indexes WHERE tablename = $1 AND indexname = $2", table, name)
	return cnt > 0, err
}

// createIndexSQL returns the SQL statement creating the given index
func (d *postgresAdapter) createIndexSQL(table string, idx index) string {
	var unique, where string
	if idx.unique {
		unique = "UNIQUE "
	}
	if idx.where != "" {
		where = " WHERE " + idx.where
	}
	quoted := make([]string, len(idx.columns))
	for i, col := range idx.columns {
		quoted[i] = d.quoteName(col)
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)%s", unique, idx.name, d.quoteName(table), strings.Join(quoted, ", "), where)
}

// isolationLevel returns the isolation level of the transactions
func (d *postgresAdapter) isolationLevel() sql.IsolationLevel {
	return sql.LevelSerializable
}

// isSerializationError returns true if the given error is a serialization error
// and that the failed transaction should be retried.
func (d *postgresAdapter) isSerializationError(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Class() == "40" {
		return true
	}
	return false
}

var _ dbAdapter = new(postgresAdapter)

func init() {
	registerDBAdapter("postgres", new(postgresAdapter))
}
