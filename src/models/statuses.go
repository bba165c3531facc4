// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

// CallStatus is the lifecycle status of a Call
type CallStatus string

// Call statuses
const (
	CallScheduled CallStatus = "Scheduled"
	CallCompleted CallStatus = "Completed"
)

// MeetingStatus is the lifecycle status of a Meeting
type MeetingStatus string

// Meeting statuses
const (
	MeetingScheduled MeetingStatus = "Scheduled"
	MeetingCompleted MeetingStatus = "Completed"
)

// ToDoStatus is the lifecycle status of a ToDo
type ToDoStatus string

// ToDo statuses
const (
	ToDoOpen   ToDoStatus = "Open"
	ToDoClosed ToDoStatus = "Closed"
)

// EventStatus is the status of a calendar Event. It is the shared
// vocabulary into which each source kind status is mapped.
type EventStatus string

// Event statuses
const (
	EventOpen      EventStatus = "Open"
	EventCompleted EventStatus = "Completed"
	EventClosed    EventStatus = "Closed"
	EventCancelled EventStatus = "Cancelled"
)

// EventCategory classifies calendar events
type EventCategory string

// Event categories
const (
	CategoryCall    EventCategory = "Call"
	CategoryMeeting EventCategory = "Meeting"
	CategoryGeneric EventCategory = "Generic"
)

// EventTypePrivate is the event type given to synced events
const EventTypePrivate = "Private"

// ReminderStatus is the delivery status of a reminder queue entry
type ReminderStatus string

// Reminder statuses
const (
	ReminderPending    ReminderStatus = "Pending"
	ReminderProcessing ReminderStatus = "Processing"
	ReminderSent       ReminderStatus = "Sent"
	ReminderFailed     ReminderStatus = "Failed"
)

// ReminderChannelEmail is the only supported delivery channel
const ReminderChannelEmail = "Email"

// LeadLink is the value of CallFor / MeetFor for records linked to a Lead
const LeadLink = "Lead"
