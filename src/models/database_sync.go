// Copyright 2019 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SyncDatabase creates the missing tables, columns and indexes of the CRM records
func (s *SQLStore) SyncDatabase(ctx context.Context) error {
	log.Info("Updating database schema")
	dbTables, err := s.adapter.tables(ctx, s.db)
	if err != nil {
		return errors.Wrap(err, "unable to get list of tables from database")
	}
	for _, t := range allTables {
		if !dbTables[t.name] {
			if err := s.createDBTable(ctx, t); err != nil {
				return err
			}
		}
		if err := s.updateDBColumns(ctx, t); err != nil {
			return err
		}
		if err := s.updateDBIndexes(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// createDBTable creates a table in the database from the given table definition
func (s *SQLStore) createDBTable(ctx context.Context, t table) error {
	defs := make([]string, len(t.columns))
	for i, col := range t.columns {
		defs[i] = fmt.Sprintf("%s %s", s.adapter.quoteName(col.name), s.adapter.typeSQL(col.typ))
	}
	query := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", s.adapter.quoteName(t.name), strings.Join(defs, ",\n\t"))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(err, "unable to create table %s", t.name)
	}
	log.Info("Table created", "table", t.name)
	return nil
}

// updateDBColumns adds the columns of t that are missing in the database
func (s *SQLStore) updateDBColumns(ctx context.Context, t table) error {
	dbColumns, err := s.adapter.columns(ctx, s.db, t.name)
	if err != nil {
		return errors.Wrapf(err, "unable to get list of columns for table %s", t.name)
	}
	for _, col := range t.columns {
		if dbColumns[col.name] {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			s.adapter.quoteName(t.name), s.adapter.quoteName(col.name), s.adapter.typeSQL(col.typ))
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return errors.Wrapf(err, "unable to add column %s to table %s", col.name, t.name)
		}
		log.Info("Column added", "table", t.name, "column", col.name)
	}
	return nil
}

// updateDBIndexes creates the indexes of t that are missing in the database
func (s *SQLStore) updateDBIndexes(ctx context.Context, t table) error {
	for _, idx := range t.indexes {
		exists, err := s.adapter.indexExists(ctx, s.db, t.name, idx.name)
		if err != nil {
			return errors.Wrapf(err, "unable to check index %s", idx.name)
		}
		if exists {
			continue
		}
		if _, err := s.db.ExecContext(ctx, s.adapter.createIndexSQL(t.name, idx)); err != nil {
			return errors.Wrapf(err, "unable to create index %s", idx.name)
		}
	}
	return nil
}
