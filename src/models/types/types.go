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

// Package types holds the column types shared by CRM records.
package types

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
)

// ListSeparator is the separator used to store a StringList in a single column
const ListSeparator = ","

// A StringList is a list of strings that is stored in database as a
// single comma separated text column. Items are trimmed and empty items
// are dropped on both storing and loading.
type StringList []string

// ParseStringList splits the given delimited string into a StringList
func ParseStringList(value string) StringList {
	var res StringList
	for _, item := range strings.Split(value, ListSeparator) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		res = append(res, item)
	}
	return res
}

// String returns the list joined with ListSeparator
func (sl StringList) String() string {
	return strings.Join(sl.Clean(), ListSeparator)
}

// Clean returns a copy of this list with trimmed values and without empty items
func (sl StringList) Clean() StringList {
	var res StringList
	for _, item := range sl {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		res = append(res, item)
	}
	return res
}

// Copy returns a copy of this StringList that does not share memory with it.
func (sl StringList) Copy() StringList {
	if sl == nil {
		return nil
	}
	res := make(StringList, len(sl))
	copy(res, sl)
	return res
}

// Value formats our StringList for storing in database
func (sl StringList) Value() (driver.Value, error) {
	return sl.String(), nil
}

// Scan casts the database output to a StringList
func (sl *StringList) Scan(src interface{}) error {
	switch t := src.(type) {
	case nil:
		*sl = nil
	case string:
		*sl = ParseStringList(t)
	case []byte:
		*sl = ParseStringList(string(t))
	default:
		return fmt.Errorf("unexpected type %T for StringList", src)
	}
	return nil
}

var _ driver.Valuer = StringList{}
var _ sql.Scanner = new(StringList)
