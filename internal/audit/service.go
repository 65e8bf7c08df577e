package audit

import (
	"encoding/json"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/circulation/internal/database/audit"
	"github.com/mrlokans/circulation/internal/entities"
)

// maxTextLen matches the size of the description and error_msg columns.
const maxTextLen = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Record implements services.EventRecorder.
func (s *Service) Record(event *entities.AuditEvent) {
	event.Description = clip(event.Description)
	event.ErrorMsg = clip(event.ErrorMsg)
	s.LogAsync(event)
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogOverdueNotice records that an open loan was found past its due date.
func (s *Service) LogOverdueNotice(patronID string, bookID uint, title string, daysOverdue int, fee string) {
	event := &entities.AuditEvent{
		PatronID:    patronID,
		EventType:   entities.AuditEventOverdue,
		Action:      "overdue_notice",
		Description: clip(title + " is overdue"),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"days_overdue": daysOverdue,
		"late_fee":     fee,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogSchedule records a scheduler run.
func (s *Service) LogSchedule(action, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSchedule,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = clip(err.Error())
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(f audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(f)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// clip shortens s to at most maxTextLen bytes, ending with "..." when cut.
// It never splits a multi-byte character.
func clip(s string) string {
	if len(s) <= maxTextLen {
		return s
	}
	cut := maxTextLen - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
