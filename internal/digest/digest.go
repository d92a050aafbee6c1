// Package digest mails the admin inbox a periodic list of bookings with
// changes awaiting approval.
package digest

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"whitelotus/internal/booking"
	"whitelotus/internal/notify"
)

type PendingLister interface {
	ListWithPending(ctx context.Context) ([]*booking.Booking, error)
}

type Sender interface {
	PendingDigest(ctx context.Context, items []notify.PendingBooking) notify.Result
}

type Job struct {
	Bookings PendingLister
	Sender   Sender
	Timeout  time.Duration
}

// Run collects pending bookings and sends one digest. Nothing is sent when no
// booking is pending.
func (j Job) Run(ctx context.Context) (notify.Result, error) {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	bs, err := j.Bookings.ListWithPending(ctx)
	if err != nil {
		return notify.Result{}, err
	}
	items := make([]notify.PendingBooking, 0, len(bs))
	for _, b := range bs {
		items = append(items, notify.PendingBooking{
			ReferenceID:  b.ReferenceID,
			ContactName:  b.ContactName,
			ContactEmail: b.ContactEmail,
			Fields:       b.Data.PendingFields(),
		})
	}
	return j.Sender.PendingDigest(ctx, items), nil
}

// Start schedules the job on spec in Reykjavik time and starts the scheduler.
// An empty spec disables the digest and returns nil.
func Start(spec string, j Job) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation("Atlantic/Reykjavik")
	if err != nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() {
		res, err := j.Run(context.Background())
		if err != nil {
			log.Printf("digest: list pending failed: %v", err)
			return
		}
		notify.LogResult("digest", res)
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("digest: scheduled spec=%q", spec)
	return c, nil
}
