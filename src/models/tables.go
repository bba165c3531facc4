// Copyright 2019 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import "strings"

// Table names of the CRM records
const (
	CallTable          = "crm_call"
	MeetingTable       = "crm_meeting"
	ToDoTable          = "crm_todo"
	EventTable         = "crm_event"
	LeadTable          = "crm_lead"
	LeadFollowupTable  = "crm_lead_followup"
	LeadTimelineTable  = "crm_lead_timeline"
	ReminderQueueTable = "crm_reminder_queue"
)

// A columnType is the database agnostic type of a column
type columnType uint8

const (
	idColumn columnType = iota
	charColumn
	textColumn
	boolColumn
	intColumn
	nullIntColumn
	dateTimeColumn
	dateColumn
)

type column struct {
	name string
	typ  columnType
}

// An index of a table. If where is set, the index only applies to the
// rows matching this SQL condition on adapters that support it.
type index struct {
	name    string
	columns []string
	unique  bool
	where   string
}

type table struct {
	name    string
	columns []column
	indexes []index
}

// columnNames returns the names of all the columns of t
func (t table) columnNames() []string {
	res := make([]string, len(t.columns))
	for i, col := range t.columns {
		res[i] = col.name
	}
	return res
}

func cols(typ columnType, names ...string) []column {
	res := make([]column, len(names))
	for i, name := range names {
		res[i] = column{name: name, typ: typ}
	}
	return res
}

func concatColumns(groups ...[]column) []column {
	var res []column
	for _, g := range groups {
		res = append(res, g...)
	}
	return res
}

var (
	callTableDef = table{
		name: CallTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(charColumn, "title", "call_for", "lead_name", "call_purpose", "outgoing_call_status",
				"completed_call_status", "lead_followup_row"),
			cols(textColumn, "call_agenda", "completed_call_notes"),
			cols(dateTimeColumn, "call_start_time", "call_end_time"),
			cols(boolColumn, "enable_reminder"),
			cols(nullIntColumn, "remind_before_minutes"),
		),
		indexes: []index{{name: "crm_call_start_idx", columns: []string{"call_start_time"}}},
	}
	meetingTableDef = table{
		name: MeetingTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(charColumn, "title", "meet_for", "lead_name", "meeting_venue", "location", "host",
				"meeting_status", "completed_meet_status", "lead_followup_row"),
			cols(textColumn, "participants", "completed_meet_notes"),
			cols(dateTimeColumn, "from_time", "to_time"),
			cols(boolColumn, "enable_reminder"),
			cols(nullIntColumn, "remind_before_minutes"),
		),
		indexes: []index{{name: "crm_meeting_from_idx", columns: []string{"from_time"}}},
	}
	todoTableDef = table{
		name: ToDoTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(textColumn, "description"),
			cols(dateColumn, "date"),
			cols(charColumn, "priority", "status", "allocated_to"),
		),
	}
	eventTableDef = table{
		name: EventTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(charColumn, "subject", "event_category", "event_type", "status", "color", "priority",
				"reference_type", "reference_id"),
			cols(dateTimeColumn, "starts_on", "ends_on"),
			cols(boolColumn, "all_day"),
			cols(textColumn, "description", "participants"),
		),
		indexes: []index{
			{name: "crm_event_reference_uniq", columns: []string{"reference_type", "reference_id"}, unique: true, where: "reference_id <> ''"},
			{name: "crm_event_starts_on_idx", columns: []string{"starts_on"}},
		},
	}
	leadTableDef = table{
		name: LeadTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(charColumn, "lead_name", "company_name", "email_id", "mobile_no", "gstin", "workflow_state"),
			cols(intColumn, "lead_score"),
		),
	}
	leadFollowupTableDef = table{
		name: LeadFollowupTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(charColumn, "lead", "status", "type"),
			cols(intColumn, "idx"),
			cols(dateTimeColumn, "date_and_time"),
			cols(textColumn, "notes"),
		),
		indexes: []index{{name: "crm_lead_followup_lead_idx", columns: []string{"lead"}}},
	}
	leadTimelineTableDef = table{
		name: LeadTimelineTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(charColumn, "lead", "state_from", "state_to", "change_by"),
			cols(intColumn, "idx"),
			cols(dateTimeColumn, "date_and_time"),
		),
		indexes: []index{{name: "crm_lead_timeline_lead_idx", columns: []string{"lead"}}},
	}
	reminderQueueTableDef = table{
		name: ReminderQueueTable,
		columns: concatColumns(
			cols(idColumn, "id"),
			cols(charColumn, "reference_type", "reference_id", "reminder_type", "status", "channel"),
			cols(dateTimeColumn, "trigger_at", "sent_at"),
			cols(textColumn, "recipients", "last_error"),
			cols(intColumn, "attempts"),
		),
		indexes: []index{
			{name: "crm_reminder_queue_due_idx", columns: []string{"status", "trigger_at"}},
			{name: "crm_reminder_queue_reference_idx", columns: []string{"reference_type", "reference_id"}},
		},
	}
)

// allTables lists the tables of all CRM records
var allTables = []table{
	callTableDef,
	meetingTableDef,
	todoTableDef,
	eventTableDef,
	leadTableDef,
	leadFollowupTableDef,
	leadTimelineTableDef,
	reminderQueueTableDef,
}

// selectList returns the quoted column list of t for SELECT statements
func (t table) selectList(adapter dbAdapter) string {
	names := t.columnNames()
	for i, name := range names {
		names[i] = adapter.quoteName(name)
	}
	return strings.Join(names, ", ")
}
