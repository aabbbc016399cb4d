package logging

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig holds configuration for log rotation.
type RotationConfig struct {
	// MaxSizeMB is the size in megabytes at which the log is rotated. 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int
	// Compress gzips rotated files.
	Compress bool
}

// DefaultRotationConfig returns the rotation settings used when none are configured.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter is an io.Writer over a log file that rotates by size.
// It is safe for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	path    string
	limit   int64
	backups int
	gzip    bool

	file *os.File
	size int64
	// compressing tracks the background gzip of backup 1. Backups are not
	// shifted while it runs.
	compressing sync.WaitGroup

	// errMu guards failures that are waiting to be reported by the Logger.
	errMu   sync.Mutex
	pending []error
}

// NewRotatingWriter opens (or creates) path for appending.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		path:    path,
		limit:   int64(cfg.MaxSizeMB) << 20,
		backups: cfg.MaxBackups,
		gzip:    cfg.Compress,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(rw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	rw.file = f
	rw.size = info.Size()
	return nil
}

// Write appends p, rotating first when p would push the file past the limit.
// A failed rotation is kept for takeErrors and the write goes to the old file.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}
	if rw.limit > 0 && rw.size > 0 && rw.size+int64(len(p)) > rw.limit {
		if err := rw.rotate(); err != nil {
			rw.fail(err)
		}
	}
	if rw.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// rotate must be called with mu held.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil

	rw.compressing.Wait()
	rw.shiftBackups()

	if rw.backups > 0 {
		first := rw.backup(1)
		if err := os.Rename(rw.path, first); err != nil {
			if openErr := rw.open(); openErr != nil {
				return fmt.Errorf("failed to rename log file and reopen: %w", openErr)
			}
			return fmt.Errorf("failed to rename log file: %w", err)
		}
		if rw.gzip {
			rw.compressing.Add(1)
			go func() {
				defer rw.compressing.Done()
				if err := compress(first); err != nil {
					rw.fail(err)
				}
			}()
		}
	} else if err := os.Remove(rw.path); err != nil && !os.IsNotExist(err) {
		_ = rw.open()
		return fmt.Errorf("failed to truncate log file: %w", err)
	}

	return rw.open()
}

// shiftBackups renames .N to .N+1, dropping whatever falls off the end.
func (rw *RotatingWriter) shiftBackups() {
	if rw.backups <= 0 {
		return
	}
	oldest := rw.backup(rw.backups)
	_ = os.Remove(oldest)
	_ = os.Remove(oldest + ".gz")

	for i := rw.backups - 1; i >= 1; i-- {
		from, to := rw.backup(i), rw.backup(i+1)
		if _, err := os.Stat(from + ".gz"); err == nil {
			_ = os.Rename(from+".gz", to+".gz")
		} else if _, err := os.Stat(from); err == nil {
			_ = os.Rename(from, to)
		}
	}
}

func (rw *RotatingWriter) backup(n int) string {
	return fmt.Sprintf("%s.%d", rw.path, n)
}

// compress replaces path with path.gz. Failures leave the plain backup behind.
func compress(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to compress log backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return fmt.Errorf("failed to compress log backup: %w", err)
	}
	zw := gzip.NewWriter(dst)
	_, copyErr := io.Copy(zw, src)
	closeErr := zw.Close()
	if err := errors.Join(copyErr, closeErr, dst.Close()); err != nil {
		_ = os.Remove(path + ".gz")
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	_ = os.Remove(path)
	return nil
}

func (rw *RotatingWriter) fail(err error) {
	rw.errMu.Lock()
	rw.pending = append(rw.pending, err)
	rw.errMu.Unlock()
}

// takeErrors returns and clears the rotation failures recorded so far.
func (rw *RotatingWriter) takeErrors() []error {
	rw.errMu.Lock()
	defer rw.errMu.Unlock()
	errs := rw.pending
	rw.pending = nil
	return errs
}

// Close waits for pending compression and closes the file.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.compressing.Wait()
	if rw.file == nil {
		return nil
	}
	if err := rw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	err := rw.file.Close()
	rw.file = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Size returns the current size of the log file in bytes.
func (rw *RotatingWriter) Size() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}

// FilePath returns the path to the log file.
func (rw *RotatingWriter) FilePath() string {
	return rw.path
}
