package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var variables = []string{
	"CONTACTMGR_STORE_DRIVER",
	"CONTACTMGR_SQLITE_DSN",
	"CONTACTMGR_YAML_PATH",
	"CONTACTMGR_LOG_LEVEL",
	"CONTACTMGR_LOG_FORMAT",
}

// clearEnv unsets every variable for the duration of the test. t.Setenv
// registers the restore, the explicit unset makes the variable absent so that
// envconfig applies defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range variables {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load(writeDotenv(t, ""))
		require.NoError(t, err)
		assert.Equal(t, Config{
			StoreDriver: DriverSQLite,
			SQLiteDSN:   "file:contacts.db",
			YAMLPath:    "contacts.yaml",
			LogLevel:    "info",
			LogFormat:   "text",
		}, cfg)
	})

	t.Run("reads overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONTACTMGR_STORE_DRIVER", " YAML ")
		t.Setenv("CONTACTMGR_YAML_PATH", "/tmp/book.yaml")
		t.Setenv("CONTACTMGR_LOG_LEVEL", "debug")
		t.Setenv("CONTACTMGR_LOG_FORMAT", "json")

		cfg, err := Load(writeDotenv(t, ""))
		require.NoError(t, err)
		assert.Equal(t, DriverYAML, cfg.StoreDriver)
		assert.Equal(t, "/tmp/book.yaml", cfg.YAMLPath)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("lists every invalid variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONTACTMGR_STORE_DRIVER", "postgres")
		t.Setenv("CONTACTMGR_LOG_LEVEL", "loud")

		_, err := Load(writeDotenv(t, ""))
		require.ErrorIs(t, err, ErrInvalid)
		assert.EqualError(t, err, "config: invalid environment: CONTACTMGR_STORE_DRIVER, CONTACTMGR_LOG_LEVEL")
	})

	t.Run("dotenv values fill unset variables only", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONTACTMGR_LOG_LEVEL", "warn")

		path := writeDotenv(t, "CONTACTMGR_SQLITE_DSN=file:from-dotenv.db\nCONTACTMGR_LOG_LEVEL=error\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "file:from-dotenv.db", cfg.SQLiteDSN)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("missing explicit dotenv file fails", func(t *testing.T) {
		clearEnv(t)

		_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{StoreDriver: DriverYAML, YAMLPath: "book.yaml", LogLevel: "info", LogFormat: "text"}
	require.NoError(t, valid.Validate())

	missingPath := valid
	missingPath.YAMLPath = ""
	assert.ErrorIs(t, missingPath.Validate(), ErrInvalid)

	missingDSN := Config{StoreDriver: DriverSQLite, LogLevel: "info", LogFormat: "json"}
	assert.EqualError(t, missingDSN.Validate(), "config: invalid environment: CONTACTMGR_SQLITE_DSN")

	badFormat := valid
	badFormat.LogFormat = "xml"
	assert.ErrorIs(t, badFormat.Validate(), ErrInvalid)
}

func writeDotenv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
