// Package config loads typed configuration structs from environment
// variables. A .env file, if present, is loaded once per process before
// the first parse; real environment variables always win over file values.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilPointer is returned when Load is called with a nil target.
var ErrNilPointer = errors.New("config: nil pointer provided")

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]any)

	envOnce sync.Once
)

// Load parses environment variables into cfg based on `env` struct tags.
// Each distinct configuration type is parsed at most once per process;
// later calls return the cached value, so services can load their own
// config independently without re-reading the environment.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	envOnce.Do(func() {
		// Missing .env is fine; env vars may be set directly.
		_ = godotenv.Load()
	})

	key := reflect.TypeOf((*T)(nil)).Elem().String()

	cacheMu.RLock()
	cached, ok := cache[key]
	cacheMu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}

	cacheMu.Lock()
	cache[key] = *cfg
	cacheMu.Unlock()
	return nil
}

// MustLoad is Load that panics on failure. Intended for process startup
// where a missing required variable should prevent boot.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Reset clears the type cache. Test helper only.
func Reset() {
	cacheMu.Lock()
	cache = make(map[string]any)
	cacheMu.Unlock()
}
