package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mqm/core/config"
)

// Each test uses its own config type: the loader caches per type, so sharing
// a type across tests would leak state between them.

func TestLoad(t *testing.T) {
	t.Run("parses environment with defaults", func(t *testing.T) {
		type loadConfig struct {
			Name    string        `env:"CONFIG_TEST_NAME" envDefault:"fallback"`
			Timeout time.Duration `env:"CONFIG_TEST_TIMEOUT" envDefault:"5s"`
		}

		t.Setenv("CONFIG_TEST_NAME", "from-env")

		var cfg loadConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from-env", cfg.Name)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		type requiredConfig struct {
			Secret string `env:"CONFIG_TEST_MISSING_SECRET,required"`
		}

		var cfg requiredConfig
		require.Error(t, config.Load(&cfg))
	})

	t.Run("caches per type", func(t *testing.T) {
		type cachedConfig struct {
			Value string `env:"CONFIG_TEST_CACHED" envDefault:"initial"`
		}

		t.Setenv("CONFIG_TEST_CACHED", "first")

		var cfg1 cachedConfig
		require.NoError(t, config.Load(&cfg1))
		require.Equal(t, "first", cfg1.Value)

		// A changed environment must not be observed after the first load.
		t.Setenv("CONFIG_TEST_CACHED", "second")

		var cfg2 cachedConfig
		require.NoError(t, config.Load(&cfg2))
		assert.Equal(t, "first", cfg2.Value)
	})

	t.Run("nil pointer fails", func(t *testing.T) {
		var cfg *struct{}
		require.ErrorIs(t, config.Load(cfg), config.ErrNilConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("returns loaded config", func(t *testing.T) {
		type mustConfig struct {
			Port int `env:"CONFIG_TEST_PORT" envDefault:"8080"`
		}

		var cfg mustConfig
		require.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("panics on failure", func(t *testing.T) {
		type mustFailConfig struct {
			Token string `env:"CONFIG_TEST_MISSING_TOKEN,required"`
		}

		var cfg mustFailConfig
		require.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
