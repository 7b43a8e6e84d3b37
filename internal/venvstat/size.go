package venvstat

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Usage is the result of aggregating a directory tree.
type Usage struct {
	// Bytes is the cumulative size of all regular files.
	Bytes int64 `json:"bytes"`
	// Files is the number of regular files counted.
	Files int64 `json:"files"`
	// Errors is the number of entries skipped because they could not be read.
	Errors int64 `json:"errors"`
}

// collector aggregates sizes from concurrent fastwalk callbacks using a mutex.
type collector struct {
	mu     sync.Mutex // Protect concurrent access
	files  int64
	bytes  int64
	errors int64
}

// addError increments the error counter. This operation is protected by a mutex
// since fastwalk calls the callback from multiple goroutines concurrently.
func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors++
}

// add records one regular file.
func (c *collector) add(size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files++
	c.bytes += size
}

// usage returns a snapshot of the counters.
func (c *collector) usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Usage{Bytes: c.bytes, Files: c.files, Errors: c.errors}
}

// walk sums the regular files below path into c and returns the bytes it added.
// Symbolic links are neither followed nor counted. Entries that cannot be read
// are counted as errors and skipped.
func (c *collector) walk(ctx context.Context, path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.addError()
		}

		return 0, nil
	}

	switch {
	case info.Mode().IsRegular():
		c.add(info.Size())

		return info.Size(), nil
	case !info.IsDir():
		// Symlinks, sockets and devices at the root contribute nothing.
		return 0, nil
	}

	var (
		mu    sync.Mutex
		local int64
	)

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	err = fastwalk.Walk(conf, path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			c.addError()

			return nil // Silently skip errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.Type().IsRegular() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			c.addError()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		c.add(fileInfo.Size())

		mu.Lock()
		local += fileInfo.Size()
		mu.Unlock()

		return nil
	})
	if err != nil {
		return local, err
	}

	return local, nil
}

// Measure aggregates the directory tree at path. A path that does not exist
// yields a zero Usage and no error. The only errors returned come from ctx.
func Measure(ctx context.Context, path string) (Usage, error) {
	var c collector

	if _, err := c.walk(ctx, path); err != nil {
		return Usage{}, err
	}

	return c.usage(), nil
}

// DirSize returns the total size in bytes of all regular files below path,
// excluding symbolic links. It returns 0 if path does not exist.
func DirSize(path string) int64 {
	usage, _ := Measure(context.Background(), path)

	return usage.Bytes
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
// The returned function blocks until the reporter goroutine has exited, so no
// hook call happens after it returns.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) (wait func()) {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}

				u := c.usage()
				hook(u.Files, u.Bytes)
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() { <-done }
}
