// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package reminders maintains the reminder queue of calls and meetings
// and delivers due reminders.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/tools/exceptions"
	"github.com/hexya-erp/crm/src/tools/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var log logging.Logger

func init() {
	log = logging.GetLogger("reminders")
}

// Default engine parameters
const (
	DefaultWorkers         = 4
	DefaultDeliveryTimeout = 30 * time.Second
	DefaultSweepInterval   = 5 * time.Minute
)

// A Schedulable is a record that can own a reminder
type Schedulable interface {
	Reference() models.Reference
	StartTime() dates.DateTime
	ReminderEnabled() bool
	IsScheduled() bool
	// LeadMinutesOverride returns nil if the record does not override
	// the default lead time.
	LeadMinutesOverride() *int
}

var (
	_ Schedulable = new(models.Call)
	_ Schedulable = new(models.Meeting)
)

// An Engine maintains the reminder queue and delivers due reminders.
type Engine struct {
	store    models.Store
	settings SettingsProvider
	notifier Notifier
	renderer Renderer
	observer Observer
	now      func() dates.DateTime
	// Workers is the maximum number of concurrent deliveries of a sweep
	Workers int
	// DeliveryTimeout bounds each delivery attempt
	DeliveryTimeout time.Duration
}

// An Option customizes an Engine
type Option func(*Engine)

// WithClock sets the function used by the engine to get the current time
func WithClock(now func() dates.DateTime) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRenderer sets the renderer of reminder messages
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithObserver sets the telemetry observer of the engine
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithWorkers sets the maximum number of concurrent deliveries
func WithWorkers(workers int) Option {
	return func(e *Engine) {
		if workers > 0 {
			e.Workers = workers
		}
	}
}

// WithDeliveryTimeout sets the timeout of each delivery attempt
func WithDeliveryTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.DeliveryTimeout = timeout
		}
	}
}

// NewEngine returns a new reminder Engine
func NewEngine(store models.Store, settings SettingsProvider, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		settings:        settings,
		notifier:        notifier,
		observer:        nopObserver{},
		now:             dates.Now,
		Workers:         DefaultWorkers,
		DeliveryTimeout: DefaultDeliveryTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the current time according to the engine clock
func (e *Engine) Now() dates.DateTime {
	return e.now()
}

// LeadMinutes returns the number of minutes before start at which the
// reminder of src must be sent: the record override if set (even to 0),
// else the configured default, else FallbackLeadMinutes.
func (e *Engine) LeadMinutes(src Schedulable) int {
	if override := src.LeadMinutesOverride(); override != nil {
		return *override
	}
	if def := e.settings.ReminderSettings().DefaultLeadMinutes; def != nil {
		return *def
	}
	return FallbackLeadMinutes
}

// Reconcile recomputes the reminder queue of src from its current state.
// It must be called within the transaction that saves src, so that the
// replacement of the queue entries is atomic.
//
// It returns the created Pending entry or nil if src has no pending reminder.
func (e *Engine) Reconcile(ctx context.Context, env models.Environment, src Schedulable) (*models.ReminderQueue, error) {
	ref := src.Reference()
	start := src.StartTime()
	logCtx := log.New("reference", ref)
	if _, err := env.DeleteUnsentReminders(ref); err != nil {
		return nil, errors.Wrapf(err, "unable to delete reminders of %s", ref)
	}
	switch {
	case !src.ReminderEnabled() || start.IsZero():
		logCtx.Debug("Reminder disabled or no start time")
		return nil, nil
	case !src.IsScheduled():
		logCtx.Debug("Record is not scheduled anymore")
		return nil, nil
	}
	now := e.now()
	if now.GreaterEqual(start) {
		logCtx.Debug("Record already started, no reminder", "start", start)
		return nil, nil
	}
	trigger := start.AddMinutes(-e.LeadMinutes(src))
	if !trigger.Greater(now) {
		trigger = now
	}
	entry := &models.ReminderQueue{
		ReferenceType: ref.Kind,
		ReferenceID:   ref.ID,
		ReminderType:  string(ref.Kind),
		TriggerAt:     trigger,
		Status:        models.ReminderPending,
		Channel:       models.ReminderChannelEmail,
		Recipients:    types.StringList(e.settings.ReminderSettings().Recipients).Copy(),
	}
	if err := env.CreateReminder(entry); err != nil {
		return nil, errors.Wrapf(err, "unable to create reminder of %s", ref)
	}
	e.observer.RecordEnqueue(string(ref.Kind))
	logCtx.Debug("Reminder scheduled", "trigger_at", trigger)
	return entry, nil
}

// SweepStats summarizes a sweep
type SweepStats struct {
	Due    int
	Sent   int
	Failed int
	// Skipped counts due entries that were claimed by another sweep
	Skipped int
	// Errors counts entries that could not be claimed or updated
	Errors int
}

// Sweep delivers all due Pending reminders. Each entry is claimed with an
// atomic Pending to Processing transition so that concurrent sweeps never
// deliver the same entry. Delivery failures are recorded on the entries
// and do not stop the sweep.
func (e *Engine) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	start := time.Now()
	now := e.now()
	var due []*models.ReminderQueue
	err := e.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		due, err = env.DueReminders(now)
		return err
	})
	if err != nil {
		return stats, errors.Wrap(err, "unable to list due reminders")
	}
	stats.Due = len(due)
	log.Info("Reminder sweep started", "now", now, "due", stats.Due)

	results := make([]deliveryResult, len(due))
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.Workers)
	for i, entry := range due {
		i, entry := i, entry
		grp.Go(func() error {
			res, err := e.deliver(grpCtx, entry.ID)
			if err != nil {
				log.Error("Unable to process reminder", "id", entry.ID, "error", err)
			}
			results[i] = res
			return nil
		})
	}
	grp.Wait()
	for _, res := range results {
		switch res {
		case deliverySent:
			stats.Sent++
		case deliveryFailed:
			stats.Failed++
		case deliverySkipped:
			stats.Skipped++
		default:
			stats.Errors++
		}
	}
	e.observer.RecordSweep(time.Since(start), stats.Due)
	log.Info("Reminder sweep done", "sent", stats.Sent, "failed", stats.Failed, "skipped", stats.Skipped)
	return stats, nil
}

// Worker returns a models.WorkerFunction running Sweep every period
func (e *Engine) Worker(period time.Duration) models.WorkerFunction {
	if period <= 0 {
		period = DefaultSweepInterval
	}
	return models.NewWorkerFunction(func(ctx context.Context) {
		if _, err := e.Sweep(ctx); err != nil {
			log.Error("Reminder sweep failed", "error", err)
		}
	}, period)
}

// ForceSend triggers the delivery of the given entry now, whatever its
// trigger time. Sent entries cannot be sent again. Failed entries and
// entries left in Processing by an interrupted sweep are put back to
// Pending before delivery. It returns the entry after delivery.
func (e *Engine) ForceSend(ctx context.Context, id string) (*models.ReminderQueue, error) {
	err := e.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		entry, err := env.GetReminder(id)
		if err != nil {
			return err
		}
		if entry.Status == models.ReminderSent {
			return exceptions.NewUserError("Reminder already sent")
		}
		entry.Status = models.ReminderPending
		entry.TriggerAt = e.now()
		return env.UpdateReminder(entry)
	})
	if err != nil {
		return nil, err
	}
	res, err := e.deliver(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == deliverySkipped {
		return nil, exceptions.NewUserError("Reminder is being processed")
	}
	var entry *models.ReminderQueue
	err = e.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		var err error
		entry, err = env.GetReminder(id)
		return err
	})
	return entry, err
}

type deliveryResult uint8

const (
	deliveryNone deliveryResult = iota
	deliverySkipped
	deliverySent
	deliveryFailed
)

// deliver claims the given entry and sends its reminder. The returned
// error is only set if the entry could not be claimed or its final
// status could not be stored.
func (e *Engine) deliver(ctx context.Context, id string) (deliveryResult, error) {
	var (
		entry   *models.ReminderQueue
		msg     Message
		loadErr error
	)
	err := e.store.ExecuteInNewEnvironment(ctx, func(env models.Environment) error {
		claimed, err := env.ClaimReminder(id)
		if err != nil || !claimed {
			return err
		}
		entry, err = env.GetReminder(id)
		if err != nil {
			return err
		}
		msg, loadErr = e.buildMessage(env, entry)
		return nil
	})
	if err != nil {
		return deliveryNone, errors.Wrapf(err, "unable to claim reminder %s", id)
	}
	if entry == nil {
		log.Debug("Reminder already claimed", "id", id)
		return deliverySkipped, nil
	}

	start := time.Now()
	sendErr := loadErr
	if sendErr == nil {
		sendCtx, cancel := context.WithTimeout(ctx, e.DeliveryTimeout)
		sendErr = e.notifier.Send(sendCtx, msg)
		cancel()
	}
	e.observer.RecordDelivery(string(entry.ReferenceType), time.Since(start), sendErr)

	// The final status is stored even if ctx has been cancelled meanwhile
	storeCtx := context.Background()
	res := deliverySent
	err = e.store.ExecuteInNewEnvironment(storeCtx, func(env models.Environment) error {
		if sendErr != nil {
			res = deliveryFailed
			return env.MarkReminderFailed(id, sendErr.Error())
		}
		return env.MarkReminderSent(id, e.now())
	})
	if err != nil {
		return deliveryNone, errors.Wrapf(err, "unable to store status of reminder %s", id)
	}
	if sendErr != nil {
		log.Warn("Reminder delivery failed", "id", id, "reference", entry.Reference(), "error", sendErr)
	} else {
		log.Info("Reminder sent", "id", id, "reference", entry.Reference())
	}
	return res, nil
}

// buildMessage loads the source record of entry and renders its reminder
func (e *Engine) buildMessage(env models.Environment, entry *models.ReminderQueue) (Message, error) {
	recipients := entry.Recipients.Clean()
	ref := entry.Reference()
	switch ref.Kind {
	case models.KindCall:
		call, err := env.GetCall(ref.ID)
		if err != nil {
			return Message{}, sourceError(ref, err)
		}
		if len(recipients) == 0 {
			return Message{}, errors.New("No reminder recipients configured")
		}
		return e.renderer.RenderCall(call, recipients)
	case models.KindMeeting:
		meeting, err := env.GetMeeting(ref.ID)
		if err != nil {
			return Message{}, sourceError(ref, err)
		}
		if len(recipients) == 0 {
			return Message{}, errors.New("No reminder recipients configured")
		}
		return e.renderer.RenderMeeting(meeting, recipients)
	}
	return Message{}, fmt.Errorf("unsupported reference type: %s", ref.Kind)
}

func sourceError(ref models.Reference, err error) error {
	if models.IsNotFound(err) {
		return fmt.Errorf("%s %s not found", ref.Kind, ref.ID)
	}
	return errors.Wrapf(err, "unable to load %s", ref)
}
