// Package lock keeps two gomask processes from running the same job at once.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/gomask/internal/config"
)

// ErrLockTimeout is returned when another instance holds the job lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// DefaultTimeout is how long AcquireOrFail waits before giving up.
const DefaultTimeout = time.Second

// pollInterval paces pg_try_advisory_lock retries; PostgreSQL has no
// blocking-with-timeout variant.
const pollInterval = 200 * time.Millisecond

// JobLock is a server-side advisory lock named after a job. MySQL uses
// GET_LOCK and PostgreSQL a session-level advisory lock keyed by
// hashtext(name). Both belong to a session, so the lock pins one connection
// from acquire to release.
type JobLock struct {
	db     *sql.DB
	driver string
	name   string
	conn   *sql.Conn
}

// NewJobLock creates a lock for jobName. Nothing is acquired yet.
func NewJobLock(db *sql.DB, driver, jobName string) *JobLock {
	return &JobLock{db: db, driver: driver, name: LockName(jobName)}
}

// LockName returns "gomask:job:<jobName>" with unsafe characters replaced.
func LockName(jobName string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, jobName)

	name := "gomask:job:" + sanitized
	if len(name) > 64 { // MySQL limit
		name = name[:64]
	}
	return name
}

// Name returns the lock name.
func (l *JobLock) Name() string {
	return l.name
}

// IsHeld reports whether this instance holds the lock.
func (l *JobLock) IsHeld() bool {
	return l.conn != nil
}

// Acquire tries to take the lock, waiting up to timeout. It returns false
// without error when another session holds it.
func (l *JobLock) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	if l.conn != nil {
		return true, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock connection: %w", err)
	}

	var acquired bool
	switch l.driver {
	case config.DriverPostgres:
		acquired, err = l.acquirePostgres(ctx, conn, timeout)
	default:
		acquired, err = l.acquireMySQL(ctx, conn, timeout)
	}
	if err != nil || !acquired {
		conn.Close()
		return false, err
	}

	l.conn = conn
	return true, nil
}

// GET_LOCK returns 1 on success, 0 on timeout and NULL on error.
func (l *JobLock) acquireMySQL(ctx context.Context, conn *sql.Conn, timeout time.Duration) (bool, error) {
	var result sql.NullInt64
	seconds := int(timeout / time.Second)
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", l.name, seconds).Scan(&result); err != nil {
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}
	if !result.Valid {
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q", l.name)
	}
	switch result.Int64 {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

func (l *JobLock) acquirePostgres(ctx context.Context, conn *sql.Conn, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		var ok bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", l.name).Scan(&ok); err != nil {
			return false, fmt.Errorf("failed to execute pg_try_advisory_lock: %w", err)
		}
		if ok {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// AcquireOrFail takes the lock within DefaultTimeout or returns ErrLockTimeout.
func (l *JobLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := l.Acquire(ctx, DefaultTimeout)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, l.name)
	}
	return nil
}

// Release frees the lock and returns its connection to the pool. Closing
// the connection would release it anyway, so the connection is returned
// even when the unlock statement fails.
func (l *JobLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Close()
		l.conn = nil
	}()

	query := "SELECT RELEASE_LOCK(?)"
	if l.driver == config.DriverPostgres {
		query = "SELECT pg_advisory_unlock(hashtext($1))"
	}
	if _, err := l.conn.ExecContext(ctx, query, l.name); err != nil {
		return fmt.Errorf("failed to release lock %q: %w", l.name, err)
	}
	return nil
}

// IsJobRunning reports whether another session holds jobName's lock. The
// answer can change as soon as it returns.
func IsJobRunning(ctx context.Context, db *sql.DB, driver, jobName string) (bool, error) {
	l := NewJobLock(db, driver, jobName)
	acquired, err := l.Acquire(ctx, 0)
	if err != nil {
		return false, fmt.Errorf("failed to check if job %q is running: %w", jobName, err)
	}
	if acquired {
		_ = l.Release(ctx)
		return false, nil
	}
	return true, nil
}
