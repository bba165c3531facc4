// Copyright 2019 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"fmt"
	"strings"

	"github.com/hexya-erp/crm/src/models/types/dates"
)

// sqlEnvironment is the Environment of an SQLStore transaction
type sqlEnvironment struct {
	cr      *Cursor
	adapter dbAdapter
}

// Cr returns the Cursor of this environment
func (e *sqlEnvironment) Cr() *Cursor {
	return e.cr
}

func (e *sqlEnvironment) q(name string) string {
	return e.adapter.quoteName(name)
}

func sqlGet[T any](e *sqlEnvironment, t table, id string) (*T, error) {
	rec := new(T)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", t.selectList(e.adapter), e.q(t.name), e.q("id"))
	if err := e.cr.Get(rec, query, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// sqlSelect returns the records of t matching the given where clause
func sqlSelect[T any](e *sqlEnvironment, t table, where, order string, args ...interface{}) ([]*T, error) {
	var res []*T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s", t.selectList(e.adapter), e.q(t.name), where, order)
	if err := e.cr.Select(&res, query, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// insert the given record in table t
func (e *sqlEnvironment) insert(t table, rec interface{}) error {
	names := t.columnNames()
	quoted := make([]string, len(names))
	params := make([]string, len(names))
	for i, name := range names {
		quoted[i] = e.q(name)
		params[i] = ":" + name
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", e.q(t.name), strings.Join(quoted, ", "), strings.Join(params, ", "))
	_, err := e.cr.NamedExecute(query, rec)
	return err
}

// update all the columns of the given record in table t
func (e *sqlEnvironment) update(t table, rec interface{}) error {
	var sets []string
	for _, name := range t.columnNames() {
		if name == "id" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", e.q(name), name))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = :id", e.q(t.name), strings.Join(sets, ", "), e.q("id"))
	res, err := e.cr.NamedExecute(query, rec)
	if err != nil {
		return err
	}
	return checkRowsAffected(res.RowsAffected())
}

func checkRowsAffected(num int64, err error) error {
	if err != nil {
		return err
	}
	if num == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCall returns the call with the given id
func (e *sqlEnvironment) GetCall(id string) (*Call, error) {
	return sqlGet[Call](e, callTableDef, id)
}

// CreateCall inserts the given call
func (e *sqlEnvironment) CreateCall(call *Call) error {
	ensureID(&call.ID)
	return e.insert(callTableDef, call)
}

// UpdateCall overwrites the stored call with the given one
func (e *sqlEnvironment) UpdateCall(call *Call) error {
	return e.update(callTableDef, call)
}

// CallsInRange returns the calls that overlap the given time range
func (e *sqlEnvironment) CallsInRange(start, end dates.DateTime) ([]*Call, error) {
	where := fmt.Sprintf("(%[1]s IS NULL OR %[1]s <= ?) AND (%[2]s IS NULL OR %[2]s >= ?)",
		e.q("call_start_time"), e.q("call_end_time"))
	return sqlSelect[Call](e, callTableDef, where, e.q("call_start_time")+", "+e.q("id"), end, start)
}

// GetMeeting returns the meeting with the given id
func (e *sqlEnvironment) GetMeeting(id string) (*Meeting, error) {
	return sqlGet[Meeting](e, meetingTableDef, id)
}

// CreateMeeting inserts the given meeting
func (e *sqlEnvironment) CreateMeeting(meeting *Meeting) error {
	ensureID(&meeting.ID)
	return e.insert(meetingTableDef, meeting)
}

// UpdateMeeting overwrites the stored meeting with the given one
func (e *sqlEnvironment) UpdateMeeting(meeting *Meeting) error {
	return e.update(meetingTableDef, meeting)
}

// MeetingsInRange returns the meetings that overlap the given time range
func (e *sqlEnvironment) MeetingsInRange(start, end dates.DateTime) ([]*Meeting, error) {
	where := fmt.Sprintf("(%[1]s IS NULL OR %[1]s <= ?) AND (%[2]s IS NULL OR %[2]s >= ?)",
		e.q("from_time"), e.q("to_time"))
	return sqlSelect[Meeting](e, meetingTableDef, where, e.q("from_time")+", "+e.q("id"), end, start)
}

// GetToDo returns the todo with the given id
func (e *sqlEnvironment) GetToDo(id string) (*ToDo, error) {
	return sqlGet[ToDo](e, todoTableDef, id)
}

// CreateToDo inserts the given todo
func (e *sqlEnvironment) CreateToDo(todo *ToDo) error {
	ensureID(&todo.ID)
	return e.insert(todoTableDef, todo)
}

// UpdateToDo overwrites the stored todo with the given one
func (e *sqlEnvironment) UpdateToDo(todo *ToDo) error {
	return e.update(todoTableDef, todo)
}

// GetEvent returns the event with the given id
func (e *sqlEnvironment) GetEvent(id string) (*Event, error) {
	return sqlGet[Event](e, eventTableDef, id)
}

// CreateEvent inserts the given event
func (e *sqlEnvironment) CreateEvent(event *Event) error {
	ensureID(&event.ID)
	if err := e.checkEventReference(event); err != nil {
		return err
	}
	return e.insert(eventTableDef, event)
}

// UpdateEvent overwrites the stored event with the given one
func (e *sqlEnvironment) UpdateEvent(event *Event) error {
	if err := e.checkEventReference(event); err != nil {
		return err
	}
	return e.update(eventTableDef, event)
}

// checkEventReference returns an error if another event is linked to the
// same record. This completes the unique index on databases that do not
// support partial indexes.
func (e *sqlEnvironment) checkEventReference(event *Event) error {
	if event.Reference().IsZero() {
		return nil
	}
	other, err := e.FindEventByReference(event.Reference())
	switch {
	case IsNotFound(err):
		return nil
	case err != nil:
		return err
	case other.ID != event.ID:
		return fmt.Errorf("an event already exists for %s", event.Reference())
	}
	return nil
}

// FindEventByReference returns the event linked to the given record
func (e *sqlEnvironment) FindEventByReference(ref Reference) (*Event, error) {
	where := fmt.Sprintf("%s = ? AND %s = ?", e.q("reference_type"), e.q("reference_id"))
	events, err := sqlSelect[Event](e, eventTableDef, where, e.q("id"), ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events[0], nil
}

// EventsInRange returns the events that overlap the given time range.
func (e *sqlEnvironment) EventsInRange(start, end dates.DateTime) ([]*Event, error) {
	where := fmt.Sprintf("%[1]s <= ? AND COALESCE(%[2]s, %[1]s) >= ?", e.q("starts_on"), e.q("ends_on"))
	return sqlSelect[Event](e, eventTableDef, where, e.q("starts_on")+", "+e.q("id"), end, start)
}

// GetLead returns the lead with the given id
func (e *sqlEnvironment) GetLead(id string) (*Lead, error) {
	return sqlGet[Lead](e, leadTableDef, id)
}

// CreateLead inserts the given lead
func (e *sqlEnvironment) CreateLead(lead *Lead) error {
	ensureID(&lead.ID)
	return e.insert(leadTableDef, lead)
}

// UpdateLead overwrites the stored lead with the given one
func (e *sqlEnvironment) UpdateLead(lead *Lead) error {
	return e.update(leadTableDef, lead)
}

// GetLeadFollowup returns the follow-up row with the given id
func (e *sqlEnvironment) GetLeadFollowup(id string) (*LeadFollowup, error) {
	return sqlGet[LeadFollowup](e, leadFollowupTableDef, id)
}

// nextSequence returns the next row sequence of the given lead in table t
func (e *sqlEnvironment) nextSequence(t table, leadID string) (int, error) {
	var seq int
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) FROM %s WHERE %s = ?", e.q("idx"), e.q(t.name), e.q("lead"))
	if err := e.cr.Get(&seq, query, leadID); err != nil {
		return 0, err
	}
	return seq + 1, nil
}

// CreateLeadFollowup appends the given row to its lead follow-up history
func (e *sqlEnvironment) CreateLeadFollowup(row *LeadFollowup) error {
	ensureID(&row.ID)
	if row.Sequence == 0 {
		seq, err := e.nextSequence(leadFollowupTableDef, row.Lead)
		if err != nil {
			return err
		}
		row.Sequence = seq
	}
	return e.insert(leadFollowupTableDef, row)
}

// UpdateLeadFollowup overwrites the stored follow-up row with the given one
func (e *sqlEnvironment) UpdateLeadFollowup(row *LeadFollowup) error {
	return e.update(leadFollowupTableDef, row)
}

// LeadFollowups returns the follow-up history of the given lead
func (e *sqlEnvironment) LeadFollowups(leadID string) ([]*LeadFollowup, error) {
	return sqlSelect[LeadFollowup](e, leadFollowupTableDef, e.q("lead")+" = ?", e.q("idx"), leadID)
}

// CreateLeadTimeline appends the given row to its lead pipeline history
func (e *sqlEnvironment) CreateLeadTimeline(row *LeadTimeline) error {
	ensureID(&row.ID)
	if row.Sequence == 0 {
		seq, err := e.nextSequence(leadTimelineTableDef, row.Lead)
		if err != nil {
			return err
		}
		row.Sequence = seq
	}
	return e.insert(leadTimelineTableDef, row)
}

// LeadTimelines returns the pipeline history of the given lead
func (e *sqlEnvironment) LeadTimelines(leadID string) ([]*LeadTimeline, error) {
	return sqlSelect[LeadTimeline](e, leadTimelineTableDef, e.q("lead")+" = ?", e.q("idx"), leadID)
}

// GetReminder returns the reminder queue entry with the given id
func (e *sqlEnvironment) GetReminder(id string) (*ReminderQueue, error) {
	return sqlGet[ReminderQueue](e, reminderQueueTableDef, id)
}

// CreateReminder inserts the given reminder queue entry
func (e *sqlEnvironment) CreateReminder(entry *ReminderQueue) error {
	ensureID(&entry.ID)
	return e.insert(reminderQueueTableDef, entry)
}

// UpdateReminder overwrites the stored reminder queue entry with the given one
func (e *sqlEnvironment) UpdateReminder(entry *ReminderQueue) error {
	return e.update(reminderQueueTableDef, entry)
}

// DeleteUnsentReminders deletes all entries of the given reference that are not Sent
func (e *sqlEnvironment) DeleteUnsentReminders(ref Reference) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ? AND %s <> ?",
		e.q(ReminderQueueTable), e.q("reference_type"), e.q("reference_id"), e.q("status"))
	res, err := e.cr.Execute(query, ref.Kind, ref.ID, ReminderSent)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RemindersFor returns all entries of the given reference ordered by trigger time
func (e *sqlEnvironment) RemindersFor(ref Reference) ([]*ReminderQueue, error) {
	where := fmt.Sprintf("%s = ? AND %s = ?", e.q("reference_type"), e.q("reference_id"))
	return sqlSelect[ReminderQueue](e, reminderQueueTableDef, where, e.q("trigger_at")+", "+e.q("id"), ref.Kind, ref.ID)
}

// DueReminders returns the Pending entries with a trigger time before or at now
func (e *sqlEnvironment) DueReminders(now dates.DateTime) ([]*ReminderQueue, error) {
	where := fmt.Sprintf("%s = ? AND %s <= ?", e.q("status"), e.q("trigger_at"))
	return sqlSelect[ReminderQueue](e, reminderQueueTableDef, where, e.q("trigger_at")+", "+e.q("id"), ReminderPending, now)
}

// ClaimReminder moves the given entry from Pending to Processing with
// a single conditional update.
func (e *sqlEnvironment) ClaimReminder(id string) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ? AND %s = ?",
		e.q(ReminderQueueTable), e.q("status"), e.q("id"), e.q("status"))
	res, err := e.cr.Execute(query, ReminderProcessing, id, ReminderPending)
	if err != nil {
		return false, err
	}
	num, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return num == 1, nil
}

// MarkReminderSent sets the given entry to Sent
func (e *sqlEnvironment) MarkReminderSent(id string, sentAt dates.DateTime) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ?, %s = ? WHERE %s = ?",
		e.q(ReminderQueueTable), e.q("status"), e.q("sent_at"), e.q("id"))
	res, err := e.cr.Execute(query, ReminderSent, sentAt, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res.RowsAffected())
}

// MarkReminderFailed sets the given entry to Failed
func (e *sqlEnvironment) MarkReminderFailed(id string, lastError string) error {
	query := fmt.Sprintf("UPDATE %[1]s SET %[2]s = ?, %[3]s = %[3]s + 1, %[4]s = ? WHERE %[5]s = ?",
		e.q(ReminderQueueTable), e.q("status"), e.q("attempts"), e.q("last_error"), e.q("id"))
	res, err := e.cr.Execute(query, ReminderFailed, lastError, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res.RowsAffected())
}

var _ Environment = new(sqlEnvironment)
