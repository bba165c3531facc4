// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reminders

import (
	"github.com/hexya-erp/crm/src/tools/emailutils"
	"github.com/spf13/viper"
)

// FallbackLeadMinutes is the lead time used when neither the record
// nor the settings define one.
const FallbackLeadMinutes = 15

// Settings are the process wide reminder settings
type Settings struct {
	// DefaultLeadMinutes is nil when no default is configured
	DefaultLeadMinutes *int
	Recipients         []string
}

// A SettingsProvider returns the current reminder settings
type SettingsProvider interface {
	ReminderSettings() Settings
}

// StaticSettings is a SettingsProvider that always returns itself
type StaticSettings Settings

// ReminderSettings returns s as Settings
func (s StaticSettings) ReminderSettings() Settings {
	return Settings(s)
}

// ConfigSettings reads the reminder settings from the viper configuration:
// Reminders.DefaultLeadMinutes and Reminders.Recipients.
type ConfigSettings struct{}

// ReminderSettings returns the reminder settings from the configuration.
// Recipients are deduplicated and invalid addresses are dropped.
func (ConfigSettings) ReminderSettings() Settings {
	var res Settings
	if viper.IsSet("Reminders.DefaultLeadMinutes") {
		minutes := viper.GetInt("Reminders.DefaultLeadMinutes")
		res.DefaultLeadMinutes = &minutes
	}
	for _, addr := range emailutils.Normalize(viper.GetStringSlice("Reminders.Recipients")) {
		if !emailutils.IsValidAddress(addr) {
			log.Warn("Ignoring invalid reminder recipient", "address", addr)
			continue
		}
		res.Recipients = append(res.Recipients, addr)
	}
	return res
}

var _ SettingsProvider = ConfigSettings{}
var _ SettingsProvider = StaticSettings{}
