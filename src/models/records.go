// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"github.com/hexya-erp/crm/src/models/types"
	"github.com/hexya-erp/crm/src/models/types/dates"
)

// A Call is an outgoing phone call scheduled by a sales user.
type Call struct {
	ID                  string         `db:"id" json:"id"`
	Title               string         `db:"title" json:"title"`
	CallFor             string         `db:"call_for" json:"call_for"`
	LeadName            string         `db:"lead_name" json:"lead_name"`
	Purpose             string         `db:"call_purpose" json:"call_purpose"`
	Agenda              string         `db:"call_agenda" json:"call_agenda"`
	Start               dates.DateTime `db:"call_start_time" json:"call_start_time"`
	End                 dates.DateTime `db:"call_end_time" json:"call_end_time"`
	Status              CallStatus     `db:"outgoing_call_status" json:"outgoing_call_status"`
	CompletedStatus     string         `db:"completed_call_status" json:"completed_call_status"`
	CompletedNotes      string         `db:"completed_call_notes" json:"completed_call_notes"`
	EnableReminder      bool           `db:"enable_reminder" json:"enable_reminder"`
	RemindBeforeMinutes *int           `db:"remind_before_minutes" json:"remind_before_minutes"`
	LeadFollowupRow     string         `db:"lead_followup_row" json:"lead_followup_row"`
}

// Reference returns the Reference to this Call
func (c *Call) Reference() Reference {
	return NewReference(KindCall, c.ID)
}

// StartTime returns the time at which the call is scheduled
func (c *Call) StartTime() dates.DateTime {
	return c.Start
}

// ReminderEnabled returns true if a reminder should be sent for this call
func (c *Call) ReminderEnabled() bool {
	return c.EnableReminder
}

// IsScheduled returns true if the call has not taken place yet
func (c *Call) IsScheduled() bool {
	return c.Status == CallScheduled
}

// LeadMinutesOverride returns the per-call reminder lead time, if set
func (c *Call) LeadMinutesOverride() *int {
	return c.RemindBeforeMinutes
}

func (c Call) copy() Call {
	c.RemindBeforeMinutes = copyInt(c.RemindBeforeMinutes)
	return c
}

// A Meeting is a scheduled meeting with a host and participants.
type Meeting struct {
	ID                  string           `db:"id" json:"id"`
	Title               string           `db:"title" json:"title"`
	MeetFor             string           `db:"meet_for" json:"meet_for"`
	LeadName            string           `db:"lead_name" json:"lead_name"`
	Venue               string           `db:"meeting_venue" json:"meeting_venue"`
	Location            string           `db:"location" json:"location"`
	Host                string           `db:"host" json:"host"`
	Participants        types.StringList `db:"participants" json:"participants"`
	From                dates.DateTime   `db:"from_time" json:"from"`
	To                  dates.DateTime   `db:"to_time" json:"to"`
	Status              MeetingStatus    `db:"meeting_status" json:"meeting_status"`
	CompletedStatus     string           `db:"completed_meet_status" json:"completed_meet_status"`
	CompletedNotes      string           `db:"completed_meet_notes" json:"completed_meet_notes"`
	EnableReminder      bool             `db:"enable_reminder" json:"enable_reminder"`
	RemindBeforeMinutes *int             `db:"remind_before_minutes" json:"remind_before_minutes"`
	LeadFollowupRow     string           `db:"lead_followup_row" json:"lead_followup_row"`
}

// Reference returns the Reference to this Meeting
func (m *Meeting) Reference() Reference {
	return NewReference(KindMeeting, m.ID)
}

// StartTime returns the time at which the meeting starts
func (m *Meeting) StartTime() dates.DateTime {
	return m.From
}

// ReminderEnabled returns true if a reminder should be sent for this meeting
func (m *Meeting) ReminderEnabled() bool {
	return m.EnableReminder
}

// IsScheduled returns true if the meeting has not taken place yet
func (m *Meeting) IsScheduled() bool {
	return m.Status == MeetingScheduled
}

// LeadMinutesOverride returns the per-meeting reminder lead time, if set
func (m *Meeting) LeadMinutesOverride() *int {
	return m.RemindBeforeMinutes
}

func (m Meeting) copy() Meeting {
	m.RemindBeforeMinutes = copyInt(m.RemindBeforeMinutes)
	m.Participants = m.Participants.Copy()
	return m
}

// A ToDo is a task with a due date.
type ToDo struct {
	ID          string     `db:"id" json:"id"`
	Description string     `db:"description" json:"description"`
	Date        dates.Date `db:"date" json:"date"`
	Priority    string     `db:"priority" json:"priority"`
	Status      ToDoStatus `db:"status" json:"status"`
	AllocatedTo string     `db:"allocated_to" json:"allocated_to"`
}

// Reference returns the Reference to this ToDo
func (t *ToDo) Reference() Reference {
	return NewReference(KindToDo, t.ID)
}

// An Event is a calendar entry, optionally linked to the Call, Meeting
// or ToDo it has been created from.
type Event struct {
	ID            string           `db:"id" json:"id"`
	Subject       string           `db:"subject" json:"subject"`
	Category      EventCategory    `db:"event_category" json:"event_category"`
	EventType     string           `db:"event_type" json:"event_type"`
	StartsOn      dates.DateTime   `db:"starts_on" json:"starts_on"`
	EndsOn        dates.DateTime   `db:"ends_on" json:"ends_on"`
	AllDay        bool             `db:"all_day" json:"all_day"`
	Status        EventStatus      `db:"status" json:"status"`
	Color         string           `db:"color" json:"color"`
	Priority      string           `db:"priority" json:"priority"`
	Description   string           `db:"description" json:"description"`
	Participants  types.StringList `db:"participants" json:"participants"`
	ReferenceType Kind             `db:"reference_type" json:"reference_type"`
	ReferenceID   string           `db:"reference_id" json:"reference_id"`
}

// Reference returns the Reference of the record this event is linked
// to. The returned Reference is zero if the Event is not linked.
func (e *Event) Reference() Reference {
	return NewReference(e.ReferenceType, e.ReferenceID)
}

// SetReference links this Event to the given record
func (e *Event) SetReference(ref Reference) {
	e.ReferenceType = ref.Kind
	e.ReferenceID = ref.ID
}

func (e Event) copy() Event {
	e.Participants = e.Participants.Copy()
	return e
}

// A Lead is a sales prospect.
type Lead struct {
	ID            string `db:"id" json:"id"`
	LeadName      string `db:"lead_name" json:"lead_name"`
	CompanyName   string `db:"company_name" json:"company_name"`
	Email         string `db:"email_id" json:"email_id"`
	Phone         string `db:"mobile_no" json:"mobile_no"`
	GSTIN         string `db:"gstin" json:"gstin"`
	WorkflowState string `db:"workflow_state" json:"workflow_state"`
	Score         int    `db:"lead_score" json:"lead_score"`
}

// A LeadFollowup is a row of the follow-up history of a Lead.
type LeadFollowup struct {
	ID          string         `db:"id" json:"id"`
	Lead        string         `db:"lead" json:"lead"`
	Sequence    int            `db:"idx" json:"idx"`
	DateAndTime dates.DateTime `db:"date_and_time" json:"date_and_time"`
	Status      string         `db:"status" json:"status"`
	Type        string         `db:"type" json:"type"`
	Notes       string         `db:"notes" json:"notes"`
}

// A LeadTimeline is a row of the pipeline history of a Lead.
type LeadTimeline struct {
	ID          string         `db:"id" json:"id"`
	Lead        string         `db:"lead" json:"lead"`
	Sequence    int            `db:"idx" json:"idx"`
	StateFrom   string         `db:"state_from" json:"state_from"`
	StateTo     string         `db:"state_to" json:"state_to"`
	DateAndTime dates.DateTime `db:"date_and_time" json:"date_and_time"`
	ChangeBy    string         `db:"change_by" json:"change_by"`
}

// A ReminderQueue entry is one pending or completed reminder delivery.
type ReminderQueue struct {
	ID            string           `db:"id" json:"id"`
	ReferenceType Kind             `db:"reference_type" json:"reference_type"`
	ReferenceID   string           `db:"reference_id" json:"reference_id"`
	ReminderType  string           `db:"reminder_type" json:"reminder_type"`
	TriggerAt     dates.DateTime   `db:"trigger_at" json:"trigger_at"`
	Status        ReminderStatus   `db:"status" json:"status"`
	Channel       string           `db:"channel" json:"channel"`
	Recipients    types.StringList `db:"recipients" json:"recipients"`
	Attempts      int              `db:"attempts" json:"attempts"`
	LastError     string           `db:"last_error" json:"last_error"`
	SentAt        dates.DateTime   `db:"sent_at" json:"sent_at"`
}

// Reference returns the Reference of the record this entry reminds of
func (r *ReminderQueue) Reference() Reference {
	return NewReference(r.ReferenceType, r.ReferenceID)
}

func (r ReminderQueue) copy() ReminderQueue {
	r.Recipients = r.Recipients.Copy()
	return r
}

func copyInt(val *int) *int {
	if val == nil {
		return nil
	}
	res := *val
	return &res
}
