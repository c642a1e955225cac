package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

const testConfig = `
[database]
type = "mongodb"
uri = "mongodb://db:27017/"
database = "catalog"
collection = "items"

[engine]
max_retries = 5
initial_backoff = "250ms"
operation_timeout = "1m"
parallelism = 2

[logging]
level = "debug"

[suppliers.midocean]
name = "MidOcean"
batch_size = 50
language = "de"

[suppliers.midocean.api]
base_url = "https://api.example.test/gateway"
api_key = "secret"
requests_per_second = 4.5
timeout = "15s"

[suppliers.feed]
name = "Feed"
loader = "memory"

[suppliers.feed.options]
dir = "testdata/feed"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "etl_config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewConfigStore_DefaultPath(t *testing.T) {
	// Run from an empty directory so the default path does not exist
	t.Chdir(t.TempDir())

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, store.Path())
	assert.False(t, store.Loaded())
}

func TestNewConfigStore_MissingFileUsesSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	store, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.False(t, store.Loaded())

	suppliers := store.Suppliers()
	require.Len(t, suppliers, 1)
	assert.Equal(t, "midocean", suppliers[0].ID)
	assert.Equal(t, "mongodb", suppliers[0].Loader)
}

func TestConfigStore_Load(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.True(t, store.Loaded())

	cfg := store.Config()
	assert.Equal(t, "mongodb://db:27017/", cfg.Database.URI)
	assert.Equal(t, "catalog", cfg.Database.Database)
	assert.Equal(t, "items", cfg.Database.Collection)
	// Unset keys keep their defaults
	assert.Equal(t, 1000, cfg.Database.BatchSize)
	assert.Equal(t, domain.Duration(domain.DefaultMaxBackoff), cfg.Engine.MaxBackoff)

	assert.Equal(t, 5, cfg.Engine.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.InitialBackoff.Std())
	assert.Equal(t, time.Minute, cfg.Engine.OperationTimeout.Std())
	assert.Equal(t, 2, cfg.Engine.Parallelism)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestConfigStore_Supplier(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, testConfig))
	require.NoError(t, err)

	desc, err := store.Supplier("midocean")
	require.NoError(t, err)
	assert.Equal(t, "midocean", desc.ID)
	assert.Equal(t, "MidOcean", desc.Name)
	assert.Equal(t, 50, desc.BatchSize)
	assert.Equal(t, "de", desc.Language)
	assert.Equal(t, "mongodb", desc.Loader)
	assert.Equal(t, "https://api.example.test/gateway", desc.API.BaseURL)
	assert.Equal(t, "secret", desc.API.APIKey)
	assert.InDelta(t, 4.5, desc.API.RequestsPerSecond, 0.001)
	assert.Equal(t, 15*time.Second, desc.API.Timeout.Std())

	feed, err := store.Supplier("feed")
	require.NoError(t, err)
	assert.Equal(t, "memory", feed.Loader)
	assert.Equal(t, "testdata/feed", feed.Option("dir", ""))

	_, err = store.Supplier("unknown")
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestConfigStore_Suppliers_Sorted(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, testConfig))
	require.NoError(t, err)

	suppliers := store.Suppliers()
	require.Len(t, suppliers, 2)
	assert.Equal(t, "feed", suppliers[0].ID)
	assert.Equal(t, "midocean", suppliers[1].ID)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	_, err := NewConfigStore(writeConfig(t, "[database\ntype = "))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestConfigStore_Load_InvalidDuration(t *testing.T) {
	_, err := NewConfigStore(writeConfig(t, "[engine]\ninitial_backoff = \"soon\"\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestConfigStore_Load_InvalidValues(t *testing.T) {
	_, err := NewConfigStore(writeConfig(t, "[engine]\nmax_retries = -1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestConfigStore_WriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "etl_config.toml")
	store, err := NewConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.WriteSample(false))
	assert.True(t, store.Loaded())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Refuses to overwrite without force
	err = store.WriteSample(false)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.NoError(t, store.WriteSample(true))

	// Round trip through a fresh store
	reloaded, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Loaded())
	desc, err := reloaded.Supplier("midocean")
	require.NoError(t, err)
	assert.Equal(t, "https://api.midocean.com/gateway", desc.API.BaseURL)
	assert.Equal(t, domain.DefaultOperationTimeout, desc.API.Timeout.Std())
	assert.Equal(t, domain.DefaultInitialBackoff, reloaded.Config().Engine.InitialBackoff.Std())
}

func TestConfigStore_Save(t *testing.T) {
	path := writeConfig(t, testConfig)
	store, err := NewConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	desc, err := store.Supplier("midocean")
	require.NoError(t, err)
	assert.Equal(t, 50, desc.BatchSize)
}

func TestConfigStore_Config_ReturnsCopy(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, testConfig))
	require.NoError(t, err)

	cfg := store.Config()
	delete(cfg.Suppliers, "feed")

	assert.Len(t, store.Suppliers(), 2)
}

func TestNewSampleConfigStore_ReplacesBrokenFile(t *testing.T) {
	path := writeConfig(t, "[database\nbroken")

	_, err := NewConfigStore(path)
	require.ErrorIs(t, err, domain.ErrConfig)

	store := NewSampleConfigStore(path)
	assert.False(t, store.Loaded())
	assert.ErrorIs(t, store.WriteSample(false), domain.ErrAlreadyExists)
	require.NoError(t, store.WriteSample(true))

	reloaded, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Loaded())
}
