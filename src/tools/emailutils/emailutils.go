// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package emailutils

import (
	"regexp"
	"strings"
)

// SingleEmailRE matches exactly one email address
const SingleEmailRE string = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,63}$`

var singleEmail = regexp.MustCompile(SingleEmailRE)

// IsValidAddress returns true if the given address is valid
// and contains only one address
func IsValidAddress(address string) bool {
	return singleEmail.MatchString(address)
}

// Normalize trims the given addresses, drops empty ones and removes
// duplicates (case insensitive) while keeping the original order.
func Normalize(addresses []string) []string {
	seen := make(map[string]bool)
	var res []string
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, addr)
	}
	return res
}
