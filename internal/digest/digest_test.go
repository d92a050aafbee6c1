package digest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelotus/internal/approval"
	"whitelotus/internal/booking"
	"whitelotus/internal/notify"
)

type capture struct{ items [][]notify.PendingBooking }

func (c *capture) PendingDigest(_ context.Context, items []notify.PendingBooking) notify.Result {
	c.items = append(c.items, items)
	if len(items) == 0 {
		return notify.Result{}
	}
	return notify.Result{Kind: notify.KindPendingDigest, Sent: true}
}

type failing struct{}

func (failing) ListWithPending(context.Context) ([]*booking.Booking, error) {
	return nil, errors.New("db down")
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	store := booking.NewMemoryStore()
	_, err := store.Create(ctx, booking.Seed{ReferenceID: "WL-1", ContactEmail: "a@example.com", ContactName: "Anna"})
	require.NoError(t, err)

	c := &capture{}
	j := Job{Bookings: store, Sender: c}

	res, err := j.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped())

	w := booking.Workflow{Store: store, Machine: approval.NewMachine()}
	_, err = w.UpdateField(ctx, "WL-1", nil, approval.Command{Field: "guestCount", Action: approval.Edit{Value: float64(40)}})
	require.NoError(t, err)

	res, err = j.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Sent)
	require.Len(t, c.items, 2)
	require.Len(t, c.items[1], 1)
	assert.Equal(t, "Anna", c.items[1][0].ContactName)
	assert.Equal(t, []string{"guestCount"}, c.items[1][0].Fields)
}

func TestRun_ListError(t *testing.T) {
	_, err := Job{Bookings: failing{}, Sender: &capture{}}.Run(context.Background())
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	c, err := Start("", Job{})
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = Start("not a cron spec", Job{})
	assert.Error(t, err)

	c, err = Start("0 9 * * *", Job{})
	require.NoError(t, err)
	c.Stop()
}
