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
	"fmt"
	"os"
	"testing"

	"github.com/hexya-erp/crm/src/tools/logging"
	"github.com/spf13/viper"
)

var dbArgs = struct {
	Driver   string
	Host     string
	User     string
	Password string
	DB       string
	Debug    string
}{}

// sqlTestStore is the SQL store under test. It is nil unless
// CRM_DB_DRIVER is set in the environment.
var sqlTestStore *SQLStore

func TestMain(m *testing.M) {
	initializeTests()
	res := m.Run()
	tearDownTests()
	os.Exit(res)
}

func initializeTests() {
	dbArgs.Debug = os.Getenv("CRM_DEBUG")
	viper.Set("LogLevel", "panic")
	if dbArgs.Debug != "" {
		viper.Set("Debug", true)
		viper.Set("LogLevel", "debug")
		viper.Set("LogStdout", true)
	}
	logging.Initialize()

	dbArgs.Driver = os.Getenv("CRM_DB_DRIVER")
	if dbArgs.Driver == "" {
		return
	}
	fmt.Printf("Initializing %s database for models\n", dbArgs.Driver)
	dbArgs.Host = os.Getenv("CRM_DB_HOST")
	dbArgs.User = os.Getenv("CRM_DB_USER")
	if dbArgs.User == "" {
		dbArgs.User = "crm"
	}
	dbArgs.Password = os.Getenv("CRM_DB_PASSWORD")
	if dbArgs.Password == "" {
		dbArgs.Password = "crm"
	}
	dbArgs.DB = os.Getenv("CRM_DB_NAME")
	if dbArgs.DB == "" {
		dbArgs.DB = "crm_models_tests"
	}
	var err error
	sqlTestStore, err = DBConnect(dbArgs.Driver, ConnectionParams{
		Host:     dbArgs.Host,
		DBName:   dbArgs.DB,
		User:     dbArgs.User,
		Password: dbArgs.Password,
		SSLMode:  "disable",
	})
	if err != nil {
		panic(err)
	}
	if err := sqlTestStore.SyncDatabase(context.Background()); err != nil {
		panic(err)
	}
}

func tearDownTests() {
	if sqlTestStore == nil {
		return
	}
	if os.Getenv("CRM_KEEP_TEST_DB") == "" {
		fmt.Printf("Tearing down database for models\n")
		for _, t := range allTables {
			sqlTestStore.DB().MustExec(fmt.Sprintf("DROP TABLE %s", sqlTestStore.adapter.quoteName(t.name)))
		}
	}
	sqlTestStore.Close()
}

// testStores returns the stores on which the Environment tests are run
func testStores() map[string]Store {
	res := map[string]Store{
		"memory": NewMemStore(),
	}
	if sqlTestStore != nil {
		res[dbArgs.Driver] = sqlTestStore
	}
	return res
}
