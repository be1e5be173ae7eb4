package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/backend"
	mock_console "gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/console/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/desk"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
)

// syncBuffer lets the test read output written by the update loop.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func pending() desk.Snapshot {
	return desk.Snapshot{
		Phase: desk.PhasePending,
		State: "pending",
		Order: &model.IncomingOrderEvent{
			ID: "A-17",
			Items: []model.OrderItem{
				{Name: "Burger", Quantity: 2, Price: decimal.RequireFromString("5.50")},
			},
			CustomerAddress: "1 Main St",
			Cutlery:         true,
			Total:           decimal.RequireFromString("11"),
		},
		Remaining:   239,
		Countdown:   "03:59",
		PrepMinutes: 11,
	}
}

func newConsole(t *testing.T) (*Console, *mock_console.MockDesk, *syncBuffer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := mock_console.NewMockDesk(ctrl)
	out := &syncBuffer{}
	return New(d, strings.NewReader(""), out), d, out
}

func TestHandle_Accept(t *testing.T) {
	c, d, out := newConsole(t)
	d.EXPECT().Snapshot().Return(pending())
	d.EXPECT().Accept(gomock.Any()).Return(nil)

	assert.True(t, c.Handle(context.Background(), "accept"))
	assert.Contains(t, out.String(), "Order A-17 accepted, ready in 11 min")
}

func TestHandle_AcceptErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nothing pending", err: desk.ErrNotPending, want: "Error: no pending order"},
		{name: "busy", err: desk.ErrBusy, want: "Error: a command is already in progress"},
		{name: "backend message", err: &backend.APIError{Status: 409, Message: "Order was cancelled"}, want: "Error: Order was cancelled"},
		{name: "network", err: errors.New("timeout"), want: "Error: " + backend.GenericFailureMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, d, out := newConsole(t)
			d.EXPECT().Snapshot().Return(pending())
			d.EXPECT().Accept(gomock.Any()).Return(tc.err)

			c.Handle(context.Background(), "accept")
			assert.Contains(t, out.String(), tc.want)
		})
	}
}

func TestHandle_Prep(t *testing.T) {
	c, d, out := newConsole(t)
	d.EXPECT().IncrementPrep().Return(12, nil)
	d.EXPECT().DecrementPrep().Return(11, nil)

	c.Handle(context.Background(), "+")
	c.Handle(context.Background(), "-")
	assert.Contains(t, out.String(), "Preparation time: 12 min")
	assert.Contains(t, out.String(), "Preparation time: 11 min")
}

func TestHandle_Reject(t *testing.T) {
	t.Run("opens dialog", func(t *testing.T) {
		c, d, out := newConsole(t)
		d.EXPECT().OpenReject().Return(nil)

		c.Handle(context.Background(), "reject")
		assert.Contains(t, out.String(), "1. "+string(model.RejectReasons[0]))
		assert.Contains(t, out.String(), "Usage: reject <n>")
	})

	t.Run("with reason number", func(t *testing.T) {
		c, d, out := newConsole(t)
		d.EXPECT().Snapshot().Return(pending())
		gomock.InOrder(
			d.EXPECT().SelectReason(string(model.RejectReasons[1])).Return(nil),
			d.EXPECT().Reject(gomock.Any()).Return(nil),
		)

		c.Handle(context.Background(), "reject 2")
		assert.Contains(t, out.String(), "Order A-17 rejected: "+string(model.RejectReasons[1]))
	})

	t.Run("bad number", func(t *testing.T) {
		c, _, out := newConsole(t)
		c.Handle(context.Background(), "reject 99")
		assert.Contains(t, out.String(), "Invalid reason number")
	})

	t.Run("failure keeps dialog", func(t *testing.T) {
		c, d, out := newConsole(t)
		d.EXPECT().Snapshot().Return(pending())
		d.EXPECT().SelectReason(gomock.Any()).Return(nil)
		d.EXPECT().Reject(gomock.Any()).Return(&backend.APIError{Status: 500, Message: "Try later"})

		c.Handle(context.Background(), "reject 1")
		assert.Contains(t, out.String(), "Error: Try later")
	})
}

func TestHandle_Misc(t *testing.T) {
	c, d, out := newConsole(t)
	d.EXPECT().CancelReject().Return(nil)
	d.EXPECT().ToggleMute().Return(true)
	d.EXPECT().Clear().Return(desk.ErrNotPending)

	c.Handle(context.Background(), "cancel")
	c.Handle(context.Background(), "mute")
	c.Handle(context.Background(), "clear")
	c.Handle(context.Background(), "   ")
	c.Handle(context.Background(), "dance")

	got := out.String()
	assert.Contains(t, got, "Reject cancelled")
	assert.Contains(t, got, "Sound muted")
	assert.Contains(t, got, "Error: no pending order")
	assert.Contains(t, got, "Unknown command")
	assert.False(t, c.Handle(context.Background(), "exit"))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, desk.Snapshot{Phase: desk.PhaseIdle})
	assert.Equal(t, "No pending order\n", buf.String())

	buf.Reset()
	snap := pending()
	snap.RejectOpen = true
	snap.Muted = true
	snap.Alert = "Order already taken"
	render(&buf, snap)

	got := buf.String()
	assert.Contains(t, got, "Order A-17 | 03:59 left | muted")
	assert.Contains(t, got, "2x Burger  11.00")
	assert.Contains(t, got, "Total: 11.00")
	assert.Contains(t, got, "Address: 1 Main St")
	assert.Contains(t, got, "Cutlery requested")
	assert.Contains(t, got, "Preparation time: 11 min")
	assert.Contains(t, got, "Rejecting, reason: not selected")
	assert.Contains(t, got, "! Order already taken")
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mock_console.NewMockDesk(ctrl)

	updatesCh := make(chan desk.Update, 2)
	var updates <-chan desk.Update = updatesCh
	unsubscribed := make(chan struct{})
	d.EXPECT().Subscribe().Return(updates, func() { close(unsubscribed) })
	d.EXPECT().Snapshot().Return(desk.Snapshot{Phase: desk.PhaseIdle}).AnyTimes()

	out := &syncBuffer{}
	inR, inW := io.Pipe()
	defer inW.Close()
	c := New(d, inR, out)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	updatesCh <- desk.Update{Snapshot: pending()}
	updatesCh <- desk.Update{Snapshot: pending(), Alert: "Connection lost"}

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "*** New order ***") && strings.Contains(s, "! Connection lost")
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, strings.Count(out.String(), "*** New order ***"))

	_, err := inW.Write([]byte("status\nexit\n"))
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrExit)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not exit")
	}
	<-unsubscribed
	assert.Contains(t, out.String(), "No pending order")
}

func TestRun_EndOfInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mock_console.NewMockDesk(ctrl)

	var updates <-chan desk.Update = make(chan desk.Update)
	d.EXPECT().Subscribe().Return(updates, func() {})
	d.EXPECT().Snapshot().Return(desk.Snapshot{Phase: desk.PhaseIdle}).AnyTimes()

	c := New(d, strings.NewReader("reasons\n"), &syncBuffer{})
	assert.NoError(t, c.Run(context.Background()))
}
