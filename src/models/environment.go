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

	"github.com/hexya-erp/crm/src/tools/logging"
	"github.com/pkg/errors"
)

// DBSerializationMaxRetries defines the number of time a
// transaction that failed due to serialization error should
// be retried.
const DBSerializationMaxRetries uint8 = 5

// IsNotFound returns true if err, or the cause of err, is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// ExecuteInNewEnvironment executes the given fnct in a new Environment
// within a new transaction.
//
// This function commits the transaction if everything went right or
// rolls it back otherwise, returning an error. Database serialization
// errors are automatically retried several times before returning an
// error if they still occur.
func (s *SQLStore) ExecuteInNewEnvironment(ctx context.Context, fnct func(Environment) error) error {
	var retries uint8
	for {
		err := s.executeInTransaction(ctx, fnct)
		if err == nil {
			return nil
		}
		retries++
		if !s.adapter.isSerializationError(errors.Cause(err)) || retries >= DBSerializationMaxRetries {
			return err
		}
		log.Debug("Retrying transaction after serialization failure", "retries", retries, "error", err)
	}
}

// executeInTransaction runs fnct once in a new transaction.
func (s *SQLStore) executeInTransaction(ctx context.Context, fnct func(Environment) error) (rError error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: s.adapter.isolationLevel()})
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	env := &sqlEnvironment{
		cr:      &Cursor{tx: tx},
		adapter: s.adapter,
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			rError = logging.LogPanicData(r)
		}
	}()
	if err := fnct(env); err != nil {
		tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "unable to commit transaction")
}
