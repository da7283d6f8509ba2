package sos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safewalk/safewalk/pkg/polyline"
)

// mockSender records SOS deliveries.
type mockSender struct {
	mu    sync.Mutex
	err   error
	calls []struct {
		lat, lng float64
		at       time.Time
	}
}

func (m *mockSender) SendSOS(ctx context.Context, lat, lng float64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, struct {
		lat, lng float64
		at       time.Time
	}{lat, lng, at})
	return m.err
}

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockNotifier records local alerts.
type mockNotifier struct {
	mu     sync.Mutex
	alerts []polyline.Coordinate
}

func (m *mockNotifier) SOSAlert(pos polyline.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, pos)
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

func testPosition() polyline.Coordinate {
	return polyline.Coordinate{Lat: 40.7516, Lon: -73.981}
}

func triggerAndWait(t *testing.T, sender Sender, notifier Notifier) (*Dispatcher, Dispatch) {
	t.Helper()

	delivered := make(chan Dispatch, 1)
	dispatcher := NewDispatcher(Config{
		Sender:     sender,
		Notifier:   notifier,
		OnDelivery: func(d Dispatch) { delivered <- d },
	})

	dispatcher.Trigger(testPosition())

	select {
	case d := <-delivered:
		return dispatcher, d
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery outcome")
		return nil, Dispatch{}
	}
}

func TestDispatcher_Trigger(t *testing.T) {
	sender := &mockSender{}
	notifier := &mockNotifier{}

	dispatcher, outcome := triggerAndWait(t, sender, notifier)

	if notifier.count() != 1 {
		t.Errorf("local alert count = %d, want 1", notifier.count())
	}
	if sender.count() != 1 {
		t.Errorf("backend delivery count = %d, want 1", sender.count())
	}
	if !outcome.Delivered || outcome.DeliveryError != "" {
		t.Errorf("unexpected outcome: %+v", outcome)
	}

	active, ok := dispatcher.Active()
	if !ok {
		t.Fatal("expected an active SOS")
	}
	if !active.Delivered {
		t.Error("active record should reflect delivery")
	}
	if active.Position != testPosition() {
		t.Errorf("unexpected position: %+v", active.Position)
	}
}

func TestDispatcher_Trigger_DeliveryFailureDoesNotBlockAlert(t *testing.T) {
	sender := &mockSender{err: errors.New("backend unreachable")}
	notifier := &mockNotifier{}

	dispatcher, outcome := triggerAndWait(t, sender, notifier)

	if notifier.count() != 1 {
		t.Error("local alert must fire even when delivery fails")
	}
	if outcome.Delivered {
		t.Error("outcome should record the failure")
	}
	if outcome.DeliveryError == "" {
		t.Error("outcome should carry the delivery error")
	}

	// The SOS is still active and visible despite the failed delivery.
	if _, ok := dispatcher.Active(); !ok {
		t.Error("failed delivery must not clear the active SOS")
	}
}

func TestDispatcher_Dismiss(t *testing.T) {
	sender := &mockSender{}
	dispatcher, _ := triggerAndWait(t, sender, nil)

	dispatcher.Dismiss()

	if _, ok := dispatcher.Active(); ok {
		t.Error("dismiss should clear the active SOS")
	}
	if sender.count() != 1 {
		t.Errorf("dismiss must not unsend, delivery count = %d", sender.count())
	}

	// Dismissing with nothing active is a no-op.
	dispatcher.Dismiss()
}

func TestDispatcher_SendsPositionAndTimestamp(t *testing.T) {
	sender := &mockSender{}
	triggerAndWait(t, sender, nil)

	sender.mu.Lock()
	call := sender.calls[0]
	sender.mu.Unlock()

	if call.lat != 40.7516 || call.lng != -73.981 {
		t.Errorf("unexpected position: %+v", call)
	}
	if call.at.IsZero() {
		t.Error("delivery must carry the trigger timestamp")
	}
}
