// Package datastore is the gateway to the JSON files produced by the offline data job.
//
// Files live under a single root directory and are addressed by dataset name:
// "next-race" is <root>/next-race.json, "drivers/driver_16" is
// <root>/drivers/driver_16.json. Every endpoint goes through Load, which reads a
// dataset and falls back to a caller-supplied value when the file is missing,
// malformed or stale, so the "read, catch, fall back" flow exists exactly once.
package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Errors returned by Read. Wrapped with the dataset name; match them with errors.Is.
var (
	ErrInvalidName = errors.New("invalid dataset name")
	ErrNotFound    = errors.New("dataset not found")
	ErrMalformed   = errors.New("dataset is not valid JSON")
	ErrStale       = errors.New("dataset is stale")
)

// segmentPattern matches one path segment of a dataset name. Segments can't start
// with a dot, which rules out "." and ".." and hidden files.
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

// Gateway reads and writes datasets under a root directory.
// It holds no mutable state and is safe for concurrent use.
type Gateway struct {
	root       string
	staleAfter time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithStaleAfter makes Read reject files whose modification time is older than d.
// Zero (the default) disables the check.
func WithStaleAfter(d time.Duration) Option {
	return func(g *Gateway) { g.staleAfter = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New returns a Gateway rooted at root.
func New(root string, opts ...Option) *Gateway {
	g := &Gateway{
		root:   root,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Root returns the directory the gateway reads from.
func (g *Gateway) Root() string { return g.root }

// ValidName reports whether name is a usable dataset name: one or more
// "/"-separated segments of letters, digits, '_', '-' and '.'.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if !segmentPattern.MatchString(seg) {
			return false
		}
	}
	return true
}

func (g *Gateway) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return filepath.Join(g.root, filepath.FromSlash(name)+".json"), nil
}

// Read returns the raw bytes of a dataset after checking that it exists, is
// fresh enough and holds valid JSON.
func (g *Gateway) Read(name string) ([]byte, error) {
	p, err := g.path(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if g.staleAfter > 0 {
		if age := g.now().Sub(info.ModTime()); age > g.staleAfter {
			return nil, fmt.Errorf("%s is %s old: %w", name, age.Round(time.Second), ErrStale)
		}
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Removed between Stat and ReadFile.
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: %w", name, ErrMalformed)
	}
	return data, nil
}

// Write stores data as the named dataset. The document must be valid JSON.
// The file is written to a temp file in the same directory and renamed over
// the target, so readers never observe a half-written dataset.
func (g *Gateway) Write(name string, data []byte) error {
	p, err := g.path(name)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%s: %w", name, ErrMalformed)
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	// Harmless after a successful rename: the temp name no longer exists.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Age returns how long ago the dataset was last written.
func (g *Gateway) Age(name string) (time.Duration, error) {
	p, err := g.path(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return 0, err
	}
	return g.now().Sub(info.ModTime()), nil
}

// Result is the outcome of Load.
type Result[T any] struct {
	Value     T     // Decoded dataset, or the fallback
	Available bool  // False for fallbacks and for datasets flagged "available": false
	Fallback  bool  // True when Value is the fallback
	Reason    error // Why the fallback was used; nil otherwise
}

// Load reads the named dataset and decodes it into a T. When the dataset is
// missing, stale, malformed or doesn't decode into T, Load returns fallback
// with Fallback set and a nil error. Only unexpected failures (permissions,
// I/O errors, an invalid name) are returned as errors.
func Load[T any](g *Gateway, name string, fallback T) (Result[T], error) {
	data, err := g.Read(name)
	if err != nil {
		if !Unavailable(err) {
			return Result[T]{}, err
		}
		g.logger.Info("serving fallback", zap.String("dataset", name), zap.Error(err))
		return Result[T]{Value: fallback, Fallback: true, Reason: err}, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		reason := fmt.Errorf("%s: %w: %v", name, ErrMalformed, err)
		g.logger.Info("serving fallback", zap.String("dataset", name), zap.Error(reason))
		return Result[T]{Value: fallback, Fallback: true, Reason: reason}, nil
	}

	return Result[T]{Value: v, Available: Available(data)}, nil
}

// Unavailable reports whether err means "no usable data yet" rather than a failure.
func Unavailable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformed) || errors.Is(err, ErrStale)
}

// Available reads the top-level "available" flag of a JSON document.
// Only an explicit false marks the data as unavailable.
func Available(data []byte) bool {
	return gjson.GetBytes(data, "available").Type != gjson.False
}
