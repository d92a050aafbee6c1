package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"whitelotus/internal/approval"
	"whitelotus/pkg/mailer"
)

type Kind string

const (
	KindChangeApproved Kind = "change_approved"
	KindChangeRejected Kind = "change_rejected"
	KindBookingUpdated Kind = "booking_updated"
	KindApprovalNeeded Kind = "approval_needed"
	KindLowReview      Kind = "low_review"
	KindPendingDigest  Kind = "pending_digest"
)

// Booking is the part of a booking a message needs.
type Booking struct {
	ReferenceID  string
	ContactEmail string
	ContactName  string
}

// Result reports what happened to one notification. It never fails the
// caller's operation; Err is for logging and tests.
type Result struct {
	Kind Kind
	To   string
	Sent bool
	Err  error
}

// Skipped is true when no message was due.
func (r Result) Skipped() bool { return r.Kind == "" }

func (r Result) Failed() bool { return r.Err != nil }

// Select decides which message a transition triggers:
//
//	admin approved             -> customer, change approved (with value)
//	admin rejected             -> customer, change rejected
//	admin edit + notifyCustomer -> customer, booking updated (with value)
//	customer edit              -> admin inbox, approval needed, reply-to customer
func Select(t approval.Transition) (Kind, bool) {
	switch t.Kind {
	case approval.KindApproved:
		return KindChangeApproved, true
	case approval.KindRejected:
		return KindChangeRejected, true
	case approval.KindAdminEdit:
		if t.NotifyCustomer {
			return KindBookingUpdated, true
		}
	case approval.KindCustomerEdit:
		return KindApprovalNeeded, true
	}
	return "", false
}

type Dispatcher struct {
	Mailer     mailer.Sender
	From       string
	AdminInbox string
	SiteURL    string
}

// FieldChanged sends the message selected for t, if any.
func (d Dispatcher) FieldChanged(ctx context.Context, t approval.Transition, b Booking) Result {
	kind, ok := Select(t)
	if !ok {
		return Result{}
	}

	data := fieldData{
		Name:      firstNonEmpty(b.ContactName, "there"),
		Reference: b.ReferenceID,
		Field:     fieldLabel(t.Field),
		Value:     formatValue(t.Value),
		HasValue:  t.HasValue,
		Link:      d.link("/whitelotus/booking/" + b.ReferenceID),
	}

	e := mailer.Email{From: d.From}
	switch kind {
	case KindChangeApproved:
		e.To = b.ContactEmail
		e.Subject = fmt.Sprintf("Your change to %s was approved (%s)", data.Field, b.ReferenceID)
	case KindChangeRejected:
		e.To = b.ContactEmail
		e.Subject = fmt.Sprintf("Your change to %s was declined (%s)", data.Field, b.ReferenceID)
	case KindBookingUpdated:
		e.To = b.ContactEmail
		e.Subject = fmt.Sprintf("Your White Lotus booking was updated (%s)", b.ReferenceID)
	case KindApprovalNeeded:
		e.To = d.AdminInbox
		e.ReplyTo = firstNonEmpty(t.Actor.Email, b.ContactEmail)
		e.Subject = fmt.Sprintf("Change awaiting approval: %s (%s)", data.Field, b.ReferenceID)
		data.Link = d.link("/admin/whitelotus/bookings/" + b.ReferenceID)
		data.CustomerEmail = e.ReplyTo
	}

	return d.send(ctx, kind, e, string(kind), data)
}

type LowReview struct {
	ID              string
	OverallStars    int
	RecommendScore  int
	Locale          string
	ImproveOneThing string
}

func (d Dispatcher) LowReview(ctx context.Context, r LowReview) Result {
	e := mailer.Email{
		From:    d.From,
		To:      d.AdminInbox,
		Subject: fmt.Sprintf("Low event feedback: %d stars, %d/10", r.OverallStars, r.RecommendScore),
	}
	return d.send(ctx, KindLowReview, e, string(KindLowReview), r)
}

type PendingBooking struct {
	ReferenceID  string
	ContactName  string
	ContactEmail string
	Fields       []string
}

// PendingDigest mails the admin inbox the bookings with changes awaiting
// approval. An empty list sends nothing.
func (d Dispatcher) PendingDigest(ctx context.Context, items []PendingBooking) Result {
	if len(items) == 0 {
		return Result{}
	}
	rows := make([]digestRow, 0, len(items))
	for _, it := range items {
		labels := make([]string, 0, len(it.Fields))
		for _, f := range it.Fields {
			labels = append(labels, fieldLabel(f))
		}
		rows = append(rows, digestRow{
			Reference: it.ReferenceID,
			Customer:  firstNonEmpty(it.ContactName, it.ContactEmail),
			Fields:    strings.Join(labels, ", "),
			Link:      d.link("/admin/whitelotus/bookings/" + it.ReferenceID),
		})
	}
	e := mailer.Email{
		From:    d.From,
		To:      d.AdminInbox,
		Subject: fmt.Sprintf("%d booking(s) have changes awaiting approval", len(items)),
	}
	return d.send(ctx, KindPendingDigest, e, string(KindPendingDigest), rows)
}

func (d Dispatcher) send(ctx context.Context, kind Kind, e mailer.Email, tmpl string, data any) Result {
	res := Result{Kind: kind, To: e.To}
	if d.Mailer == nil {
		res.Err = fmt.Errorf("no mailer configured")
		return res
	}
	html, err := render(tmpl, data)
	if err != nil {
		res.Err = err
		return res
	}
	e.HTML = html
	if err := d.Mailer.Send(ctx, e); err != nil {
		res.Err = err
		return res
	}
	res.Sent = true
	return res
}

func (d Dispatcher) link(path string) string {
	return strings.TrimSuffix(d.SiteURL, "/") + path
}

// LogResult is the standard way callers record a dispatch outcome.
func LogResult(component string, r Result) {
	switch {
	case r.Skipped():
	case r.Failed():
		log.Printf("%s: notification failed kind=%s to=%s err=%v", component, r.Kind, r.To, r.Err)
	default:
		log.Printf("%s: notification sent kind=%s to=%s", component, r.Kind, r.To)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
