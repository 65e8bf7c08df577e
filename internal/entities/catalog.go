package entities

import (
	"time"
)

// LoanPeriod is how long a patron may keep a borrowed copy.
const LoanPeriod = 14 * 24 * time.Hour

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:200;not null" json:"title"`
	Author          string    `gorm:"index;size:100;not null" json:"author"`
	ISBN            string    `gorm:"uniqueIndex;size:13;not null" json:"isbn"`
	TotalCopies     int       `gorm:"not null" json:"total_copies"`
	AvailableCopies int       `gorm:"not null" json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsAvailable reports whether at least one copy can be lent out.
func (b Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// BorrowRecord is one loan of a copy to a patron. Records are never deleted;
// returning a book only stamps ReturnDate.
type BorrowRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PatronID   string     `gorm:"index:idx_borrow_patron_book;size:6;not null" json:"patron_id"`
	BookID     uint       `gorm:"index:idx_borrow_patron_book;not null" json:"book_id"`
	Book       Book       `gorm:"foreignKey:BookID" json:"-"`
	BorrowDate time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate    time.Time  `gorm:"index;not null" json:"due_date"`
	ReturnDate *time.Time `gorm:"index" json:"return_date"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}

// IsOpen reports whether the copy is still checked out.
func (r BorrowRecord) IsOpen() bool {
	return r.ReturnDate == nil
}

// IsOverdue reports whether an open record is past its due date at now.
func (r BorrowRecord) IsOverdue(now time.Time) bool {
	return r.IsOpen() && now.After(r.DueDate)
}

// DueDateFor returns the due date of a loan starting at borrowedAt.
func DueDateFor(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(LoanPeriod)
}
