// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/tools/logging"
)

// A MemStore is a Store that keeps all records in memory.
//
// Transactions are serialized: each one works on its own copy of the
// data which replaces the store data on commit. MemStore also counts
// committed writes per table.
type MemStore struct {
	sync.Mutex
	data   *memData
	writes map[string]int
}

// NewMemStore returns a new empty MemStore
func NewMemStore() *MemStore {
	return &MemStore{
		data:   newMemData(),
		writes: make(map[string]int),
	}
}

// ExecuteInNewEnvironment executes the given fnct in a new Environment
// on a snapshot of the data. The snapshot becomes the store data if
// fnct returns nil.
func (s *MemStore) ExecuteInNewEnvironment(ctx context.Context, fnct func(Environment) error) (rError error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	env := &memEnvironment{
		data:   s.data.clone(),
		writes: make(map[string]int),
	}
	defer func() {
		if r := recover(); r != nil {
			rError = logging.LogPanicData(r)
		}
	}()
	if err := fnct(env); err != nil {
		return err
	}
	s.data = env.data
	for table, count := range env.writes {
		s.writes[table] += count
	}
	return nil
}

// Close the MemStore. This is a no-op.
func (s *MemStore) Close() error {
	return nil
}

// Writes returns the number of committed creations and updates
// on the given table since the last ResetWrites.
func (s *MemStore) Writes(table string) int {
	s.Lock()
	defer s.Unlock()
	return s.writes[table]
}

// ResetWrites sets all write counters back to zero
func (s *MemStore) ResetWrites() {
	s.Lock()
	defer s.Unlock()
	s.writes = make(map[string]int)
}

var _ Store = new(MemStore)

type memData struct {
	calls     map[string]Call
	meetings  map[string]Meeting
	todos     map[string]ToDo
	events    map[string]Event
	leads     map[string]Lead
	followups map[string]LeadFollowup
	timelines map[string]LeadTimeline
	reminders map[string]ReminderQueue
}

func newMemData() *memData {
	return &memData{
		calls:     make(map[string]Call),
		meetings:  make(map[string]Meeting),
		todos:     make(map[string]ToDo),
		events:    make(map[string]Event),
		leads:     make(map[string]Lead),
		followups: make(map[string]LeadFollowup),
		timelines: make(map[string]LeadTimeline),
		reminders: make(map[string]ReminderQueue),
	}
}

// clone returns a copy of d. Stored records are never modified in
// place so that maps can be shallow copied.
func (d *memData) clone() *memData {
	return &memData{
		calls:     cloneMap(d.calls),
		meetings:  cloneMap(d.meetings),
		todos:     cloneMap(d.todos),
		events:    cloneMap(d.events),
		leads:     cloneMap(d.leads),
		followups: cloneMap(d.followups),
		timelines: cloneMap(d.timelines),
		reminders: cloneMap(d.reminders),
	}
}

func cloneMap[T any](m map[string]T) map[string]T {
	res := make(map[string]T, len(m))
	for k, v := range m {
		res[k] = v
	}
	return res
}

func same[T any](v T) T {
	return v
}

func memGet[T any](m map[string]T, id string, cp func(T) T) (*T, error) {
	rec, ok := m[id]
	if !ok {
		return nil, ErrNotFound
	}
	res := cp(rec)
	return &res, nil
}

func memCreate[T any](m map[string]T, id string, rec T, cp func(T) T) error {
	if _, exists := m[id]; exists {
		return fmt.Errorf("duplicate record id %s", id)
	}
	m[id] = cp(rec)
	return nil
}

func memUpdate[T any](m map[string]T, id string, rec T, cp func(T) T) error {
	if _, exists := m[id]; !exists {
		return ErrNotFound
	}
	m[id] = cp(rec)
	return nil
}

// memEnvironment is the Environment of a MemStore transaction
type memEnvironment struct {
	data   *memData
	writes map[string]int
}

func (e *memEnvironment) wrote(table string) {
	e.writes[table]++
}

// GetCall returns the call with the given id
func (e *memEnvironment) GetCall(id string) (*Call, error) {
	return memGet(e.data.calls, id, Call.copy)
}

// CreateCall inserts the given call
func (e *memEnvironment) CreateCall(call *Call) error {
	ensureID(&call.ID)
	if err := memCreate(e.data.calls, call.ID, *call, Call.copy); err != nil {
		return err
	}
	e.wrote(CallTable)
	return nil
}

// UpdateCall overwrites the stored call with the given one
func (e *memEnvironment) UpdateCall(call *Call) error {
	if err := memUpdate(e.data.calls, call.ID, *call, Call.copy); err != nil {
		return err
	}
	e.wrote(CallTable)
	return nil
}

// CallsInRange returns the calls that overlap the given time range
func (e *memEnvironment) CallsInRange(start, end dates.DateTime) ([]*Call, error) {
	var res []*Call
	for _, call := range e.data.calls {
		if !overlaps(call.Start, call.End, start, end) {
			continue
		}
		c := call.copy()
		res = append(res, &c)
	}
	sort.Slice(res, func(i, j int) bool {
		return lowerByTime(res[i].Start, res[j].Start, res[i].ID, res[j].ID)
	})
	return res, nil
}

// GetMeeting returns the meeting with the given id
func (e *memEnvironment) GetMeeting(id string) (*Meeting, error) {
	return memGet(e.data.meetings, id, Meeting.copy)
}

// CreateMeeting inserts the given meeting
func (e *memEnvironment) CreateMeeting(meeting *Meeting) error {
	ensureID(&meeting.ID)
	if err := memCreate(e.data.meetings, meeting.ID, *meeting, Meeting.copy); err != nil {
		return err
	}
	e.wrote(MeetingTable)
	return nil
}

// UpdateMeeting overwrites the stored meeting with the given one
func (e *memEnvironment) UpdateMeeting(meeting *Meeting) error {
	if err := memUpdate(e.data.meetings, meeting.ID, *meeting, Meeting.copy); err != nil {
		return err
	}
	e.wrote(MeetingTable)
	return nil
}

// MeetingsInRange returns the meetings that overlap the given time range
func (e *memEnvironment) MeetingsInRange(start, end dates.DateTime) ([]*Meeting, error) {
	var res []*Meeting
	for _, meeting := range e.data.meetings {
		if !overlaps(meeting.From, meeting.To, start, end) {
			continue
		}
		m := meeting.copy()
		res = append(res, &m)
	}
	sort.Slice(res, func(i, j int) bool {
		return lowerByTime(res[i].From, res[j].From, res[i].ID, res[j].ID)
	})
	return res, nil
}

// GetToDo returns the todo with the given id
func (e *memEnvironment) GetToDo(id string) (*ToDo, error) {
	return memGet(e.data.todos, id, same[ToDo])
}

// CreateToDo inserts the given todo
func (e *memEnvironment) CreateToDo(todo *ToDo) error {
	ensureID(&todo.ID)
	if err := memCreate(e.data.todos, todo.ID, *todo, same[ToDo]); err != nil {
		return err
	}
	e.wrote(ToDoTable)
	return nil
}

// UpdateToDo overwrites the stored todo with the given one
func (e *memEnvironment) UpdateToDo(todo *ToDo) error {
	if err := memUpdate(e.data.todos, todo.ID, *todo, same[ToDo]); err != nil {
		return err
	}
	e.wrote(ToDoTable)
	return nil
}

// GetEvent returns the event with the given id
func (e *memEnvironment) GetEvent(id string) (*Event, error) {
	return memGet(e.data.events, id, Event.copy)
}

// CreateEvent inserts the given event. There can be only one event per reference.
func (e *memEnvironment) CreateEvent(event *Event) error {
	ensureID(&event.ID)
	if err := e.checkEventReference(event); err != nil {
		return err
	}
	if err := memCreate(e.data.events, event.ID, *event, Event.copy); err != nil {
		return err
	}
	e.wrote(EventTable)
	return nil
}

// UpdateEvent overwrites the stored event with the given one
func (e *memEnvironment) UpdateEvent(event *Event) error {
	if err := e.checkEventReference(event); err != nil {
		return err
	}
	if err := memUpdate(e.data.events, event.ID, *event, Event.copy); err != nil {
		return err
	}
	e.wrote(EventTable)
	return nil
}

func (e *memEnvironment) checkEventReference(event *Event) error {
	if event.Reference().IsZero() {
		return nil
	}
	for id, ev := range e.data.events {
		if id != event.ID && ev.Reference() == event.Reference() {
			return fmt.Errorf("an event already exists for %s", event.Reference())
		}
	}
	return nil
}

// FindEventByReference returns the event linked to the given record
func (e *memEnvironment) FindEventByReference(ref Reference) (*Event, error) {
	for _, ev := range e.data.events {
		if ev.Reference() == ref {
			res := ev.copy()
			return &res, nil
		}
	}
	return nil, ErrNotFound
}

// EventsInRange returns the events that overlap the given time range.
func (e *memEnvironment) EventsInRange(start, end dates.DateTime) ([]*Event, error) {
	var res []*Event
	for _, ev := range e.data.events {
		if ev.StartsOn.IsZero() {
			continue
		}
		evEnd := ev.EndsOn
		if evEnd.IsZero() {
			evEnd = ev.StartsOn
		}
		if ev.StartsOn.Greater(end) || evEnd.Lower(start) {
			continue
		}
		r := ev.copy()
		res = append(res, &r)
	}
	sort.Slice(res, func(i, j int) bool {
		return lowerByTime(res[i].StartsOn, res[j].StartsOn, res[i].ID, res[j].ID)
	})
	return res, nil
}

// GetLead returns the lead with the given id
func (e *memEnvironment) GetLead(id string) (*Lead, error) {
	return memGet(e.data.leads, id, same[Lead])
}

// CreateLead inserts the given lead
func (e *memEnvironment) CreateLead(lead *Lead) error {
	ensureID(&lead.ID)
	if err := memCreate(e.data.leads, lead.ID, *lead, same[Lead]); err != nil {
		return err
	}
	e.wrote(LeadTable)
	return nil
}

// UpdateLead overwrites the stored lead with the given one
func (e *memEnvironment) UpdateLead(lead *Lead) error {
	if err := memUpdate(e.data.leads, lead.ID, *lead, same[Lead]); err != nil {
		return err
	}
	e.wrote(LeadTable)
	return nil
}

// GetLeadFollowup returns the follow-up row with the given id
func (e *memEnvironment) GetLeadFollowup(id string) (*LeadFollowup, error) {
	return memGet(e.data.followups, id, same[LeadFollowup])
}

// CreateLeadFollowup appends the given row to its lead follow-up history
func (e *memEnvironment) CreateLeadFollowup(row *LeadFollowup) error {
	ensureID(&row.ID)
	if row.Sequence == 0 {
		for _, f := range e.data.followups {
			if f.Lead == row.Lead && f.Sequence > row.Sequence {
				row.Sequence = f.Sequence
			}
		}
		row.Sequence++
	}
	if err := memCreate(e.data.followups, row.ID, *row, same[LeadFollowup]); err != nil {
		return err
	}
	e.wrote(LeadFollowupTable)
	return nil
}

// UpdateLeadFollowup overwrites the stored follow-up row with the given one
func (e *memEnvironment) UpdateLeadFollowup(row *LeadFollowup) error {
	if err := memUpdate(e.data.followups, row.ID, *row, same[LeadFollowup]); err != nil {
		return err
	}
	e.wrote(LeadFollowupTable)
	return nil
}

// LeadFollowups returns the follow-up history of the given lead
func (e *memEnvironment) LeadFollowups(leadID string) ([]*LeadFollowup, error) {
	var res []*LeadFollowup
	for _, f := range e.data.followups {
		if f.Lead != leadID {
			continue
		}
		row := f
		res = append(res, &row)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Sequence < res[j].Sequence
	})
	return res, nil
}

// CreateLeadTimeline appends the given row to its lead pipeline history
func (e *memEnvironment) CreateLeadTimeline(row *LeadTimeline) error {
	ensureID(&row.ID)
	if row.Sequence == 0 {
		for _, t := range e.data.timelines {
			if t.Lead == row.Lead && t.Sequence > row.Sequence {
				row.Sequence = t.Sequence
			}
		}
		row.Sequence++
	}
	if err := memCreate(e.data.timelines, row.ID, *row, same[LeadTimeline]); err != nil {
		return err
	}
	e.wrote(LeadTimelineTable)
	return nil
}

// LeadTimelines returns the pipeline history of the given lead
func (e *memEnvironment) LeadTimelines(leadID string) ([]*LeadTimeline, error) {
	var res []*LeadTimeline
	for _, t := range e.data.timelines {
		if t.Lead != leadID {
			continue
		}
		row := t
		res = append(res, &row)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Sequence < res[j].Sequence
	})
	return res, nil
}

// GetReminder returns the reminder queue entry with the given id
func (e *memEnvironment) GetReminder(id string) (*ReminderQueue, error) {
	return memGet(e.data.reminders, id, ReminderQueue.copy)
}

// CreateReminder inserts the given reminder queue entry
func (e *memEnvironment) CreateReminder(entry *ReminderQueue) error {
	ensureID(&entry.ID)
	if err := memCreate(e.data.reminders, entry.ID, *entry, ReminderQueue.copy); err != nil {
		return err
	}
	e.wrote(ReminderQueueTable)
	return nil
}

// UpdateReminder overwrites the stored reminder queue entry with the given one
func (e *memEnvironment) UpdateReminder(entry *ReminderQueue) error {
	if err := memUpdate(e.data.reminders, entry.ID, *entry, ReminderQueue.copy); err != nil {
		return err
	}
	e.wrote(ReminderQueueTable)
	return nil
}

// DeleteUnsentReminders deletes all entries of the given reference that are not Sent
func (e *memEnvironment) DeleteUnsentReminders(ref Reference) (int64, error) {
	var count int64
	for id, entry := range e.data.reminders {
		if entry.Reference() != ref || entry.Status == ReminderSent {
			continue
		}
		delete(e.data.reminders, id)
		count++
	}
	return count, nil
}

// RemindersFor returns all entries of the given reference ordered by trigger time
func (e *memEnvironment) RemindersFor(ref Reference) ([]*ReminderQueue, error) {
	return e.filterReminders(func(entry ReminderQueue) bool {
		return entry.Reference() == ref
	}), nil
}

// DueReminders returns the Pending entries with a trigger time before or at now
func (e *memEnvironment) DueReminders(now dates.DateTime) ([]*ReminderQueue, error) {
	return e.filterReminders(func(entry ReminderQueue) bool {
		return entry.Status == ReminderPending && entry.TriggerAt.LowerEqual(now)
	}), nil
}

func (e *memEnvironment) filterReminders(keep func(ReminderQueue) bool) []*ReminderQueue {
	var res []*ReminderQueue
	for _, entry := range e.data.reminders {
		if !keep(entry) {
			continue
		}
		r := entry.copy()
		res = append(res, &r)
	}
	sort.Slice(res, func(i, j int) bool {
		return lowerByTime(res[i].TriggerAt, res[j].TriggerAt, res[i].ID, res[j].ID)
	})
	return res
}

// ClaimReminder moves the given entry from Pending to Processing
func (e *memEnvironment) ClaimReminder(id string) (bool, error) {
	entry, ok := e.data.reminders[id]
	if !ok || entry.Status != ReminderPending {
		return false, nil
	}
	entry.Status = ReminderProcessing
	e.data.reminders[id] = entry
	e.wrote(ReminderQueueTable)
	return true, nil
}

// MarkReminderSent sets the given entry to Sent
func (e *memEnvironment) MarkReminderSent(id string, sentAt dates.DateTime) error {
	entry, ok := e.data.reminders[id]
	if !ok {
		return ErrNotFound
	}
	entry.Status = ReminderSent
	entry.SentAt = sentAt
	e.data.reminders[id] = entry
	e.wrote(ReminderQueueTable)
	return nil
}

// MarkReminderFailed sets the given entry to Failed
func (e *memEnvironment) MarkReminderFailed(id string, lastError string) error {
	entry, ok := e.data.reminders[id]
	if !ok {
		return ErrNotFound
	}
	entry.Status = ReminderFailed
	entry.Attempts++
	entry.LastError = lastError
	e.data.reminders[id] = entry
	e.wrote(ReminderQueueTable)
	return nil
}

var _ Environment = new(memEnvironment)

// overlaps returns true if the record spanning from recStart to recEnd
// overlaps the given range. Missing bounds are unbounded.
func overlaps(recStart, recEnd, start, end dates.DateTime) bool {
	if !recStart.IsZero() && recStart.Greater(end) {
		return false
	}
	if !recEnd.IsZero() && recEnd.Lower(start) {
		return false
	}
	return true
}

func lowerByTime(t1, t2 dates.DateTime, id1, id2 string) bool {
	if !t1.Equal(t2) {
		return t1.Lower(t2)
	}
	return id1 < id2
}
