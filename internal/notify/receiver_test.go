package notify_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/notify"
	mock_notify "gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/notify/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/realtime"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fixture struct {
	receiver *notify.Receiver
	source   *mock_notify.MockSource
	cue      *mock_notify.MockCue
	recent   *mock_notify.MockStatusRecorder
	handlers map[string]realtime.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		source:   mock_notify.NewMockSource(ctrl),
		cue:      mock_notify.NewMockCue(ctrl),
		recent:   mock_notify.NewMockStatusRecorder(ctrl),
		handlers: make(map[string]realtime.Handler),
	}
	f.source.EXPECT().On(gomock.Any(), gomock.Any()).Do(func(event string, h realtime.Handler) {
		f.handlers[event] = h
	}).Times(3)

	f.receiver = notify.NewReceiver(f.source, f.cue, f.recent, zap.NewNop())
	return f
}

func (f *fixture) deliver(event string, payload string) {
	var args []json.RawMessage
	if payload != "" {
		args = []json.RawMessage{json.RawMessage(payload)}
	}
	f.handlers[event](args)
}

func TestReceiver_NewOrder(t *testing.T) {
	t.Run("holds order and rings", func(t *testing.T) {
		f := newFixture(t)
		f.cue.EXPECT().Trigger().Times(1)
		f.recent.EXPECT().Received(gomock.Any()).Times(1)

		_, ok := f.receiver.Latest()
		assert.False(t, ok)

		f.deliver(notify.EventNewOrder, `{"id":"O1","items":[{"name":"Pizza","qty":1,"price":300}],"total":300}`)

		got, ok := f.receiver.Latest()
		require.True(t, ok)
		assert.Equal(t, "O1", got.ID)
		assert.Equal(t, "300", got.Total.String())
	})

	t.Run("last write wins", func(t *testing.T) {
		f := newFixture(t)
		f.cue.EXPECT().Trigger().Times(2)
		f.recent.EXPECT().Received(gomock.Any()).Times(2)

		events, unsubscribe := f.receiver.Subscribe()
		defer unsubscribe()

		f.deliver(notify.EventNewOrder, `{"id":"E1","items":[{"name":"Soup","quantity":2,"price":5}]}`)
		f.deliver(notify.EventNewOrder, `{"id":"E2","_id":"65f0","items":[{"name":"Tea","quantity":1,"price":2}]}`)

		got, ok := f.receiver.Latest()
		require.True(t, ok)
		assert.Equal(t, "E2", got.ID)
		assert.Equal(t, "65f0", got.CommandID())

		first := <-events
		second := <-events
		assert.Equal(t, "E1", first.Order.ID)
		assert.Equal(t, "E2", second.Order.ID)
	})

	t.Run("invalid payload is dropped", func(t *testing.T) {
		f := newFixture(t)

		f.deliver(notify.EventNewOrder, `{"items":[]}`)
		f.deliver(notify.EventNewOrder, `{"id":"O1","items":[{"name":"Pizza","qty":0,"price":1}]}`)
		f.deliver(notify.EventNewOrder, `not json`)
		f.deliver(notify.EventNewOrder, "")

		_, ok := f.receiver.Latest()
		assert.False(t, ok)
	})

	t.Run("clear resolved order", func(t *testing.T) {
		f := newFixture(t)
		f.cue.EXPECT().Trigger()
		f.recent.EXPECT().Received(gomock.Any())

		f.deliver(notify.EventNewOrder, `{"orderId":"O9","items":[]}`)
		f.receiver.ClearIf("O9")

		got, ok := f.receiver.Latest()
		assert.False(t, ok)
		assert.True(t, got.IsZero())
	})

	t.Run("clear keeps a newer order", func(t *testing.T) {
		f := newFixture(t)
		f.cue.EXPECT().Trigger().Times(2)
		f.recent.EXPECT().Received(gomock.Any()).Times(2)

		f.deliver(notify.EventNewOrder, `{"orderId":"O9","items":[]}`)
		f.deliver(notify.EventNewOrder, `{"orderId":"O10","items":[]}`)
		f.receiver.ClearIf("O9")

		got, ok := f.receiver.Latest()
		require.True(t, ok)
		assert.Equal(t, "O10", got.ID)
	})
}

func TestReceiver_PlaySound(t *testing.T) {
	f := newFixture(t)
	f.cue.EXPECT().Trigger().Times(1)

	f.deliver(notify.EventPlaySound, "")

	_, ok := f.receiver.Latest()
	assert.False(t, ok)
}

func TestReceiver_StatusUpdate(t *testing.T) {
	f := newFixture(t)
	f.recent.EXPECT().UpdateStatus("O1", "cooking", gomock.Any()).Times(1)

	events, unsubscribe := f.receiver.Subscribe()
	f.deliver(notify.EventOrderStatus, `{"orderId":"O1","status":"cooking"}`)
	f.deliver(notify.EventOrderStatus, `{"status":"cooking"}`)

	ev := <-events
	assert.Equal(t, notify.KindStatus, ev.Kind)
	assert.Equal(t, model.StatusUpdate{OrderID: "O1", Status: "cooking"}, ev.Status)

	unsubscribe()
	unsubscribe()
	_, open := <-events
	assert.False(t, open)
}

func TestReceiver_SlowSubscriberKeepsNewest(t *testing.T) {
	f := newFixture(t)
	f.cue.EXPECT().Trigger().AnyTimes()
	f.recent.EXPECT().Received(gomock.Any()).AnyTimes()

	events, unsubscribe := f.receiver.Subscribe()
	defer unsubscribe()

	for i := 0; i < 20; i++ {
		f.deliver(notify.EventNewOrder, `{"id":"O`+string(rune('a'+i))+`","items":[]}`)
	}

	var last notify.Event
	timeout := time.After(time.Second)
	for drained := false; !drained; {
		select {
		case ev := <-events:
			last = ev
		case <-timeout:
			t.Fatal("no events")
		default:
			drained = true
		}
	}
	assert.Equal(t, "Ot", last.Order.ID)
}

func TestReceiver_Connected(t *testing.T) {
	f := newFixture(t)
	f.source.EXPECT().Connected().Return(true)
	assert.True(t, f.receiver.Connected())
}
