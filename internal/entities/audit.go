package entities

import "time"

type AuditEventType string

const (
	AuditEventCatalog  AuditEventType = "catalog"
	AuditEventBorrow   AuditEventType = "borrow"
	AuditEventReturn   AuditEventType = "return"
	AuditEventPayment  AuditEventType = "payment"
	AuditEventRefund   AuditEventType = "refund"
	AuditEventOverdue  AuditEventType = "overdue_notice"
	AuditEventAuth     AuditEventType = "auth"
	AuditEventSchedule AuditEventType = "schedule"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id,omitempty"`
	PatronID    string         `gorm:"index;size:6" json:"patron_id,omitempty"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "book_add", "book_borrow"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "book", "borrow_record", "payment"
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
