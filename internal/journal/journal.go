package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"github.com/vozlegal/intake/internal/errors"
)

// Kind labels one journal entry.
type Kind string

const (
	KindRoute        Kind = "route"
	KindSessionStart Kind = "session_start"
	KindTransfer     Kind = "transfer"
	KindSessionEnd   Kind = "session_end"
	KindEmergency    Kind = "emergency"
)

// Entry is one line of the intake audit journal.
type Entry struct {
	Time      time.Time `json:"time"`
	Kind      Kind      `json:"kind"`
	TraceID   string    `json:"trace_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

const lockMaxRetry = 10

// Journal is an append-only JSONL audit log. A file lock on a sidecar
// path keeps a second process instance from interleaving writes into
// the same journal.
type Journal struct {
	path     string
	file     *os.File
	fileLock *flock.Flock
	mu       sync.Mutex
}

// Open acquires the journal lock and opens the file for appending.
func Open(path string, lockTimeout, lockRetry time.Duration) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create journal directory")
	}

	fileLock := flock.New(path + ".lock")
	if err := acquireWithRetry(fileLock, lockTimeout, lockRetry); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		if unlockErr := fileLock.Unlock(); unlockErr != nil {
			slog.Warn("Failed to release journal lock", "error", unlockErr)
		}
		return nil, errors.Wrap(err, "open journal file")
	}

	slog.Info("Journal opened", "path", path)
	return &Journal{path: path, file: file, fileLock: fileLock}, nil
}

func acquireWithRetry(fileLock *flock.Flock, timeout, retry time.Duration) error {
	if retry <= 0 {
		retry = timeout / lockMaxRetry
	}

	deadline := time.Now().Add(timeout)
	for i := 0; i < lockMaxRetry; i++ {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrap(err, "attempt journal lock")
		}
		if locked {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		if i < lockMaxRetry-1 {
			time.Sleep(retry)
		}
	}

	return errors.Transient(fmt.Sprintf("journal %s is locked by another instance", fileLock.Path()))
}

// Append writes one entry. Entries with a zero time are stamped now.
func (j *Journal) Append(entry Entry) error {
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal journal entry")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return errors.Internal("journal closed")
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "write journal entry")
	}
	return nil
}

// ExportSnapshot atomically writes v as indented JSON. Readers never see
// a partially written snapshot.
func (j *Journal) ExportSnapshot(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	return nil
}

// Close syncs the file and releases the lock.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	err := j.file.Sync()
	if closeErr := j.file.Close(); err == nil {
		err = closeErr
	}
	j.file = nil

	if unlockErr := j.fileLock.Unlock(); unlockErr != nil {
		slog.Warn("Failed to release journal lock", "path", j.path, "error", unlockErr)
	}

	slog.Info("Journal closed", "path", j.path)
	return err
}
