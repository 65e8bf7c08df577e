// Package tasks runs background circulation jobs on a SQLite-backed backlite
// queue: the overdue scan and audit log cleanup.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// ErrNoTaskID is returned when the queue accepted a task but returned no ID.
var ErrNoTaskID = errors.New("task queue returned no task id")

// Client owns the queue database and the backlite worker pool.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	running atomic.Bool
}

// TasksDBPath places the queue database next to the catalog database:
// "data/library.db" becomes "data/library-tasks.db".
func TasksDBPath(catalogPath string) string {
	ext := filepath.Ext(catalogPath)
	return strings.TrimSuffix(catalogPath, ext) + "-tasks" + ext
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// every worker holds a connection while it runs, plus a few for enqueues
	db.SetMaxOpenConns(workers + 4)
	db.SetMaxIdleConns(workers)
	return db, nil
}

// NewClient opens (and if needed creates) the queue database beside
// catalogPath and installs the backlite schema.
func NewClient(catalogPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	db, err := openQueueDB(TasksDBPath(catalogPath), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("open tasks database: %w", err)
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers}, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers and returns. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[TASK] Queue started with %d workers", c.workers)
	c.queue.Start(ctx)
}

// Stop waits for running tasks until ctx expires and reports whether every
// worker finished.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.Load() {
		return true
	}
	if !c.queue.Stop(ctx) {
		log.Println("[TASK] Queue stop timed out; unfinished tasks will be released on next start")
		return false
	}
	log.Println("[TASK] Queue stopped")
	return true
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Enqueue saves a single task and returns its ID.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	ids, err := c.queue.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", task.Config().Name, err)
	}
	if len(ids) == 0 {
		return "", ErrNoTaskID
	}
	return ids[0], nil
}

// Status reports where a task is in its lifecycle.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// queueLogger routes backlite's logging through the standard logger.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
