package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/circulation/internal/entities"
)

type sampleBook struct {
	entities.Book
	// OpenLoanPatron, when set, gets an open loan borrowed SampleLoanAge before seeding.
	OpenLoanPatron string
}

// SampleLoanAge is how long ago the seeded open loan was borrowed.
const SampleLoanAge = 5 * 24 * time.Hour

var sampleCatalog = []sampleBook{
	{Book: entities.Book{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "9780743273565", TotalCopies: 3, AvailableCopies: 3}},
	{Book: entities.Book{Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "9780061120084", TotalCopies: 2, AvailableCopies: 2}},
	{Book: entities.Book{Title: "1984", Author: "George Orwell", ISBN: "9780451524935", TotalCopies: 1, AvailableCopies: 0}, OpenLoanPatron: "123456"},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (creating if needed) the SQLite database at dbPath and
// migrates every entity.
func NewDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Warn))
}

// NewDatabaseWithLogger is NewDatabase with a custom gorm logger, mostly for tests.
func NewDatabaseWithLogger(dbPath string, l logger.Interface) (*Database, error) {
	return open(dbPath, l)
}

func open(dbPath string, l logger.Interface) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: l,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Book{},
		&entities.BorrowRecord{},
		&entities.User{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// dsn adds a busy timeout and immediate write locks to file databases so
// that concurrent borrow transactions queue up instead of failing.
func dsn(dbPath string) string {
	if dbPath == ":memory:" || strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_busy_timeout=5000&_txlock=immediate"
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// SeedSampleData fills an empty catalog with a few well-known books and one
// open loan. It does nothing when any book already exists.
func (d *Database) SeedSampleData(now time.Time) error {
	var count int64
	if err := d.DB.Model(&entities.Book{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 {
		return nil
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		for _, sample := range sampleCatalog {
			book := sample.Book
			if err := tx.Create(&book).Error; err != nil {
				return fmt.Errorf("failed to create book %s: %w", book.Title, err)
			}
			log.Printf("Seeded book: %s", book.Title)

			if sample.OpenLoanPatron == "" {
				continue
			}
			borrowed := now.UTC().Add(-SampleLoanAge)
			record := &entities.BorrowRecord{
				PatronID:   sample.OpenLoanPatron,
				BookID:     book.ID,
				BorrowDate: borrowed,
				DueDate:    entities.DueDateFor(borrowed),
			}
			if err := tx.Omit("Book").Create(record).Error; err != nil {
				return fmt.Errorf("failed to create sample loan: %w", err)
			}
		}
		return nil
	})
}
