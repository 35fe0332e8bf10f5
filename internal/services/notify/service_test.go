package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockview/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func newTestService(pub Publisher) (*Service, *time.Time) {
	clock := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	svc := NewService(nil, pub)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestPush_FillsDefaults(t *testing.T) {
	svc, clock := newTestService(nil)

	n := svc.Push(models.Notification{Title: "Hello"})

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, models.NotificationInfo, n.Kind)
	assert.Equal(t, DefaultTTL, n.TTL)
	assert.Equal(t, *clock, n.CreatedAt)
	assert.Equal(t, clock.Add(DefaultTTL), n.ExpiresAt)
}

func TestActive_ExpiresAfterTTL(t *testing.T) {
	svc, clock := newTestService(nil)

	svc.Success("Holding added", "")
	svc.Push(models.Notification{Kind: models.NotificationError, Title: "Long", TTL: 10 * time.Second})
	require.Len(t, svc.Active(), 2)

	*clock = clock.Add(DefaultTTL)
	active := svc.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Long", active[0].Title)

	*clock = clock.Add(10 * time.Second)
	assert.Empty(t, svc.Active())
}

func TestPush_PublishesToast(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	n := svc.Error("Add failed", "Invalid ticker")

	require.Len(t, pub.events, 1)
	assert.Equal(t, "toast", pub.events[0].Type)
	require.NotNil(t, pub.events[0].Notification)
	assert.Equal(t, n.ID, pub.events[0].Notification.ID)
	assert.Equal(t, models.NotificationError, pub.events[0].Notification.Kind)
}

func TestDismiss(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	n := svc.Info("Portfolio created", "")
	assert.True(t, svc.Dismiss(n.ID))
	assert.False(t, svc.Dismiss(n.ID))
	assert.Empty(t, svc.Active())

	require.Len(t, pub.events, 2)
	assert.Equal(t, Event{Type: "dismiss", ID: n.ID}, pub.events[1])
}

func TestPush_UniqueIDs(t *testing.T) {
	svc, _ := newTestService(nil)
	a := svc.Info("a", "")
	b := svc.Info("b", "")
	assert.NotEqual(t, a.ID, b.ID)
}
