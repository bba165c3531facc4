// Copyright 2019 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysqlAdapter targets MySQL and MariaDB servers
type mysqlAdapter struct{}

var mysqlTypes = map[columnType]string{
	idColumn:       "varchar(64) NOT NULL PRIMARY KEY",
	charColumn:     "varchar(255) NOT NULL DEFAULT ''",
	textColumn:     "text NOT NULL",
	boolColumn:     "boolean NOT NULL DEFAULT FALSE",
	intColumn:      "int NOT NULL DEFAULT 0",
	nullIntColumn:  "int NULL",
	dateTimeColumn: "datetime NULL",
	dateColumn:     "date NULL",
}

// Server error numbers after which a transaction should be retried
const (
	mysqlLockWaitTimeout uint16 = 1205
	mysqlDeadlock        uint16 = 1213
)

// connectionString returns the DSN for the given parameters. Times are
// parsed and stored in UTC.
func (d *mysqlAdapter) connectionString(params ConnectionParams) string {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.DBName = params.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	if params.Host != "" {
		port := params.Port
		if port == "" {
			port = "3306"
		}
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(params.Host, port)
	}
	if params.SSLMode != "" && params.SSLMode != "disable" {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}

// typeSQL returns the sql type string for the given column type
func (d *mysqlAdapter) typeSQL(typ columnType) string {
	return mysqlTypes[typ]
}

// quoteName returns the given name with sql quotes
func (d *mysqlAdapter) quoteName(name string) string {
	return fmt.Sprintf("`%s`", name)
}

// tables returns a map of table names of the database
func (d *mysqlAdapter) tables(ctx context.Context, db *sqlx.DB) (map[string]bool, error) {
	var resList []string
	query := "SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE' AND table_schema = DATABASE()"
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
func (d *mysqlAdapter) columns(ctx context.Context, db *sqlx.DB, tableName string) (map[string]bool, error) {
	var colNames []string
	query := "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?"
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
func (d *mysqlAdapter) indexExists(ctx context.Context, db *sqlx.DB, table, name string) (bool, error) {
	var cnt int
	query := "SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?"
	err := db.GetContext(ctx, &cnt, query, table, name)
	return cnt > 0, err
}

// createIndexSQL returns the SQL statement creating the given index.
//
// MySQL has no partial indexes: indexes restricted by a where clause are
// created as plain non unique indexes.
func (d *mysqlAdapter) createIndexSQL(table string, idx index) string {
	var unique string
	if idx.unique && idx.where == "" {
		unique = "UNIQUE "
	}
	quoted := make([]string, len(idx.columns))
	for i, col := range idx.columns {
		quoted[i] = d.quoteName(col)
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, idx.name, d.quoteName(table), strings.Join(quoted, ", "))
}

// isolationLevel returns the isolation level of the transactions
func (d *mysqlAdapter) isolationLevel() sql.IsolationLevel {
	return sql.LevelRepeatableRead
}

// isSerializationError returns true if the given error is a deadlock or a
// lock wait timeout, after which the transaction should be retried.
func (d *mysqlAdapter) isSerializationError(err error) bool {
	myErr, ok := err.(*mysql.MySQLError)
	if !ok {
		return false
	}
	return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
}

var _ dbAdapter = new(mysqlAdapter)

func init() {
	registerDBAdapter("mysql", new(mysqlAdapter))
}
