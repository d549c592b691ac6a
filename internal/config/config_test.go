package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := "../../examples/config.yaml"
	if _, err := os.Stat(path); err != nil {
		t.Skip("examples config not present")
	}
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DatabaseSQLite, cfg.Database.Type)
	assert.Equal(t, EventsNone, cfg.Events.Type)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "database:\n  type: notsqlite\n  dsn: x\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  type: SQLite\n  dsn: people.sqlite\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DatabaseSQLite, cfg.Database.Type)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.Equal(t, EventsNone, cfg.Events.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_Kafka(t *testing.T) {
	path := writeConfig(t, "database:\n  type: mysql\n  dsn: u:p@tcp(localhost:3306)/people\nevents:\n  type: kafka\n  brokers: [\"localhost:9092\"]\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "peopledb.events", cfg.Events.Topic)

	path = writeConfig(t, "database:\n  type: sqlite\n  dsn: x\nevents:\n  type: kafka\n")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "events.brokers")
}

func TestLoadConfig_SeedRequiresSQLite(t *testing.T) {
	path := writeConfig(t, "database:\n  type: mysql\n  dsn: u:p@tcp(localhost:3306)/people\n  seed: base.sqlite\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "database.seed")
}

func TestLoadConfig_BadLogFormat(t *testing.T) {
	path := writeConfig(t, "database:\n  type: sqlite\n  dsn: x\nlog:\n  format: xml\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "log.format")
}

func TestLoadConfig_MissingDSN(t *testing.T) {
	path := writeConfig(t, "database:\n  type: mysql\n")
	cfg, err := LoadConfig(path)
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "database.dsn is required")
}

func TestLoadConfig_MissingType(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"u:p@tcp(db:3306)/people\"\n")
	cfg, err := LoadConfig(path)
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "database.type is required")
}

func TestLoadConfig_NoDatabaseSection(t *testing.T) {
	path := writeConfig(t, "http:\n  listen: \":9090\"\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Database, cfg.Database)
	assert.Equal(t, ":9090", cfg.HTTP.Listen)
}
