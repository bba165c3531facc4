// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reminders

import (
	"fmt"
	"strings"
	"time"

	"github.com/flosch/pongo2"
	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types/dates"
)

// ReminderDateFormat is the layout of dates in reminder emails
const ReminderDateFormat = "02-01-2006"

const reminderTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="margin:0; padding:0; background:#f1f5f9; font-family:-apple-system, 'Segoe UI', Arial, sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0" border="0" style="background:#f1f5f9; padding:40px 20px;">
<tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" border="0" style="background:#ffffff; border-radius:16px; overflow:hidden;">
	<tr><td style="padding:40px 32px 24px; text-align:center;">
		<h1 style="margin:0 0 10px; font-size:28px; color:#0f172a;">Upcoming {{ kind }} Reminder</h1>
		<p style="margin:0; font-size:16px; color:#64748b;">{{ title }}</p>
	</td></tr>
	<tr><td style="padding:0 32px 24px;">
		<table width="100%" cellpadding="8" cellspacing="0" border="0" style="font-size:15px; color:#0f172a;">
			<tr><td style="color:#64748b;">Date</td><td align="right"><b>{{ date }}</b></td></tr>
			<tr><td style="color:#64748b;">Time</td><td align="right"><b>{{ time }}</b></td></tr>
			<tr><td style="color:#64748b;">Status</td><td align="right"><b>{{ status }}</b></td></tr>
			{% for row in details %}<tr><td style="color:#64748b;">{{ row.Label }}</td><td align="right">{{ row.Value }}</td></tr>
			{% endfor %}
		</table>
	</td></tr>
	{% if url %}<tr><td style="padding:0 32px 40px; text-align:center;">
		<a href="{{ url }}" style="display:inline-block; padding:12px 28px; background:#2563eb; color:#ffffff; text-decoration:none; border-radius:8px;">View {{ kind }}</a>
	</td></tr>{% endif %}
</table>
</td></tr>
</table>
</body>
</html>`

var reminderTpl = pongo2.Must(pongo2.FromString(reminderTemplate))

// detailRow is an additional line of the reminder email
type detailRow struct {
	Label string
	Value string
}

// A Renderer builds reminder messages from source records
type Renderer struct {
	// BaseURL is prefixed to record links. Links are omitted when empty.
	BaseURL string
	// Location is the timezone in which times are displayed
	Location *time.Location
}

func (r Renderer) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// formURL returns the link to the form of the given record
func (r Renderer) formURL(ref models.Reference) string {
	if r.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/app/%s/%s", strings.TrimRight(r.BaseURL, "/"), strings.ToLower(string(ref.Kind)), ref.ID)
}

// RenderCall returns the reminder message of the given call
func (r Renderer) RenderCall(call *models.Call, recipients []string) (Message, error) {
	title := call.Title
	if title == "" {
		title = "Scheduled Call"
	}
	return r.render("Call", title, call.Start, string(call.Status), call.Reference(), recipients, []detailRow{
		{Label: "Purpose", Value: call.Purpose},
	})
}

// RenderMeeting returns the reminder message of the given meeting
func (r Renderer) RenderMeeting(meeting *models.Meeting, recipients []string) (Message, error) {
	title := meeting.Title
	if title == "" {
		title = "Scheduled meet"
	}
	return r.render("Meeting", title, meeting.From, string(meeting.Status), meeting.Reference(), recipients, []detailRow{
		{Label: "Venue", Value: meeting.Venue},
		{Label: "Host", Value: meeting.Host},
	})
}

func (r Renderer) render(kind, title string, start dates.DateTime, status string, ref models.Reference, recipients []string, details []detailRow) (Message, error) {
	local := start.In(r.location())
	var rows []detailRow
	for _, row := range details {
		if row.Value != "" {
			rows = append(rows, row)
		}
	}
	html, err := reminderTpl.Execute(pongo2.Context{
		"kind":    kind,
		"title":   title,
		"date":    local.Format(ReminderDateFormat),
		"time":    local.TimeOfDay(),
		"status":  status,
		"details": rows,
		"url":     r.formURL(ref),
	})
	if err != nil {
		return Message{}, fmt.Errorf("unable to render %s reminder: %s", kind, err)
	}
	return Message{
		To:      recipients,
		Subject: fmt.Sprintf("Reminder: %s at %s", kind, local.String()),
		HTML:    html,
	}, nil
}
