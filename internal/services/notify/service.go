// Package notify implements the toast notification service.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/models"
)

// DefaultTTL is how long a toast stays active.
const DefaultTTL = 3 * time.Second

// Publisher receives notification events, typically a Hub.
type Publisher interface {
	Publish(ev Event)
}

// Service implements interfaces.Notifier. It keeps the active toasts in
// memory and forwards every push to an optional Publisher.
type Service struct {
	mu        sync.Mutex
	active    []models.Notification
	publisher Publisher
	logger    *common.Logger
	now       func() time.Time
}

// NewService creates a notification service. publisher may be nil.
func NewService(logger *common.Logger, publisher Publisher) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetPublisher attaches a publisher for subsequent pushes.
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	s.publisher = p
	s.mu.Unlock()
}

// Push records a notification and returns it with id and timestamps filled in.
func (s *Service) Push(n models.Notification) models.Notification {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Kind == "" {
		n.Kind = models.NotificationInfo
	}
	if n.TTL <= 0 {
		n.TTL = DefaultTTL
	}
	n.CreatedAt = s.now()
	n.ExpiresAt = n.CreatedAt.Add(n.TTL)

	s.mu.Lock()
	s.pruneLocked(n.CreatedAt)
	s.active = append(s.active, n)
	publisher := s.publisher
	s.mu.Unlock()

	ev := s.logger.Info()
	if n.Kind == models.NotificationError {
		ev = s.logger.Warn()
	}
	ev.Str("kind", string(n.Kind)).Str("title", n.Title).Str("desc", n.Desc).Msg("Notification")

	if publisher != nil {
		pushed := n
		publisher.Publish(Event{Type: "toast", Notification: &pushed})
	}
	return n
}

// Success pushes a success toast.
func (s *Service) Success(title, desc string) models.Notification {
	return s.Push(models.Notification{Kind: models.NotificationSuccess, Title: title, Desc: desc})
}

// Error pushes an error toast.
func (s *Service) Error(title, desc string) models.Notification {
	return s.Push(models.Notification{Kind: models.NotificationError, Title: title, Desc: desc})
}

// Info pushes an informational toast.
func (s *Service) Info(title, desc string) models.Notification {
	return s.Push(models.Notification{Kind: models.NotificationInfo, Title: title, Desc: desc})
}

// Active returns unexpired notifications, oldest first.
func (s *Service) Active() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	out := make([]models.Notification, len(s.active))
	copy(out, s.active)
	return out
}

// Dismiss removes a notification before it expires.
func (s *Service) Dismiss(id string) bool {
	s.mu.Lock()
	found := false
	for i, n := range s.active {
		if n.ID == id {
			s.active = append(s.active[:i], s.active[i+1:]...)
			found = true
			break
		}
	}
	publisher := s.publisher
	s.mu.Unlock()

	if found && publisher != nil {
		publisher.Publish(Event{Type: "dismiss", ID: id})
	}
	return found
}

func (s *Service) pruneLocked(now time.Time) {
	kept := s.active[:0]
	for _, n := range s.active {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	s.active = kept
}
