// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package calendar

import "github.com/hexya-erp/crm/src/models"

// Mapping tables from each source status vocabulary into event statuses
var (
	callEventStatuses = map[models.CallStatus]models.EventStatus{
		models.CallScheduled: models.EventOpen,
		models.CallCompleted: models.EventCompleted,
	}
	meetingEventStatuses = map[models.MeetingStatus]models.EventStatus{
		models.MeetingScheduled: models.EventOpen,
		models.MeetingCompleted: models.EventCompleted,
	}
	todoEventStatuses = map[models.ToDoStatus]models.EventStatus{
		models.ToDoOpen:   models.EventOpen,
		models.ToDoClosed: models.EventClosed,
	}
)

// CallEventStatus returns the event status of a call with the given status
func CallEventStatus(status models.CallStatus) models.EventStatus {
	if res, ok := callEventStatuses[status]; ok {
		return res
	}
	return models.EventOpen
}

// MeetingEventStatus returns the event status of a meeting with the given status
func MeetingEventStatus(status models.MeetingStatus) models.EventStatus {
	if res, ok := meetingEventStatuses[status]; ok {
		return res
	}
	return models.EventOpen
}

// ToDoEventStatus returns the event status of a todo with the given status
func ToDoEventStatus(status models.ToDoStatus) models.EventStatus {
	if res, ok := todoEventStatuses[status]; ok {
		return res
	}
	return models.EventOpen
}

// CallStatusFromEvent returns the call status matching the given event status
func CallStatusFromEvent(status models.EventStatus) models.CallStatus {
	if status == models.EventCompleted {
		return models.CallCompleted
	}
	return models.CallScheduled
}

// MeetingStatusFromEvent returns the meeting status matching the given event status
func MeetingStatusFromEvent(status models.EventStatus) models.MeetingStatus {
	if status == models.EventCompleted {
		return models.MeetingCompleted
	}
	return models.MeetingScheduled
}

// ToDoStatusFromEvent returns the todo status matching the given event status
func ToDoStatusFromEvent(status models.EventStatus) models.ToDoStatus {
	if status == models.EventClosed {
		return models.ToDoClosed
	}
	return models.ToDoOpen
}
