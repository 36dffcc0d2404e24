package runlock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning reports that another live run holds the lock. Expected
// under overlapping cron schedules; callers exit with a distinct code rather
// than treating it as a real error.
var ErrAlreadyRunning = errors.New("another podsink run is in progress")

// Token is the owner record written next to the kernel lock.
type Token struct {
	PID        int       `json:"pid"`
	Hostname   string    `json:"hostname,omitempty"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lock is a held run lock. Obtain one via Acquire; Release is idempotent and
// safe to call on every exit path.
type Lock struct {
	path      string
	fl        *flock.Flock
	reclaimed *Token

	mu   sync.Mutex
	held bool
}

// Acquire takes the run lock at path or fails with ErrAlreadyRunning. A token
// left behind by a dead process, or one older than staleAfter, is reclaimed.
func Acquire(path string, staleAfter time.Duration) (*Lock, error) {
	fl := flock.New(path + ".flock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		if token, err := readToken(path); err == nil {
			return nil, fmt.Errorf("%w (pid %d since %s)", ErrAlreadyRunning, token.PID, token.AcquiredAt.Format(time.RFC3339))
		}
		return nil, ErrAlreadyRunning
	}

	lock := &Lock{path: path, fl: fl, held: true}

	// Holding the flock means no other live process holds it through this
	// package. A token written by another still-alive process (an older tool
	// version, or a run on a filesystem without flock support) is honored
	// unless it has passed the staleness threshold.
	if token, err := readToken(path); err == nil {
		fresh := staleAfter <= 0 || time.Since(token.AcquiredAt) < staleAfter
		if token.PID != os.Getpid() && processAlive(token.PID) && fresh {
			_ = fl.Unlock()
			return nil, fmt.Errorf("%w (pid %d since %s)", ErrAlreadyRunning, token.PID, token.AcquiredAt.Format(time.RFC3339))
		}
		lock.reclaimed = token
	}

	if err := writeToken(path, Token{
		PID:        os.Getpid(),
		Hostname:   hostname(),
		AcquiredAt: time.Now().UTC(),
	}); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("write lock token: %w", err)
	}
	return lock, nil
}

// Reclaimed returns the stale token this acquisition replaced, if any.
func (l *Lock) Reclaimed() *Token {
	return l.reclaimed
}

// Release removes the owner token and drops the kernel lock. Calling it more
// than once, or after a failed acquisition, is a no-op.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil
	}
	l.held = false

	var errs []error
	if token, err := readToken(l.path); err == nil && token.PID == os.Getpid() {
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove lock token: %w", err))
		}
	}
	if err := l.fl.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("release run lock: %w", err))
	}
	return errors.Join(errs...)
}

func readToken(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse lock token: %w", err)
	}
	if token.PID <= 0 {
		return nil, errors.New("lock token missing pid")
	}
	return &token, nil
}

func writeToken(path string, token Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	// EPERM means the process exists but belongs to another user.
	return errors.Is(err, unix.EPERM)
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
