package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string        `env:"CFGTEST_NAME" envDefault:"fallback"`
	Timeout time.Duration `env:"CFGTEST_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"CFGTEST_SECRET,required"`
}

func TestLoad(t *testing.T) {
	// Mutates process env and the package cache; not parallel.

	t.Run("env values override defaults", func(t *testing.T) {
		Reset()
		t.Setenv("CFGTEST_NAME", "from-env")

		var cfg testConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, "from-env", cfg.Name)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("same type loads from cache", func(t *testing.T) {
		Reset()
		t.Setenv("CFGTEST_NAME", "first")

		var first testConfig
		require.NoError(t, Load(&first))

		// The cached parse wins even after the environment changes.
		t.Setenv("CFGTEST_NAME", "second")
		var again testConfig
		require.NoError(t, Load(&again))
		assert.Equal(t, "first", again.Name)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		Reset()

		var cfg requiredConfig
		assert.Error(t, Load(&cfg))
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, Load[testConfig](nil), ErrNilPointer)
	})
}
