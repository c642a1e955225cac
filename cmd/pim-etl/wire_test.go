package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandeep-biztech/pim-etl/internal/adapters/driven/storage/memory"
	"github.com/nandeep-biztech/pim-etl/internal/adapters/driving/cli"
	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

const testBaseFeed = `{"key": "P1", "payload": {"name": "Mug", "category": "Drinkware"}}
{"key": "P2", "payload": {"name": "Pen"}}
`

const testPriceFeed = `{"key": "P1", "payload": {"price": 4.2}}
`

// writeTestConfig lays out a feed directory and a configuration using the
// memory sink.
func writeTestConfig(t *testing.T) (configPath, textfile string) {
	t.Helper()
	dir := t.TempDir()
	feedDir := filepath.Join(dir, "feed")
	require.NoError(t, os.MkdirAll(feedDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(feedDir, "base.jsonl"), []byte(testBaseFeed), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(feedDir, "price.jsonl"), []byte(testPriceFeed), 0o600))

	textfile = filepath.Join(dir, "metrics", "pim_etl.prom")
	config := fmt.Sprintf(`
[database]
type = "memory"

[engine]
max_retries = 0

[logging]
level = "error"
file = ""

[state]
dir = %q

[metrics]
textfile = %q

[suppliers.acme]
name = "Acme"

[suppliers.acme.options]
plugin = "jsonfeed"
dir = %q
`, filepath.Join(dir, "state"), textfile, feedDir)

	configPath = filepath.Join(dir, "etl_config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))
	t.Cleanup(func() { _ = logger.Configure(logger.Options{}) })
	return configPath, textfile
}

func TestBootstrap_SyncEndToEnd(t *testing.T) {
	configPath, textfile := writeTestConfig(t)
	ctx := context.Background()

	svc, err := bootstrap(ctx, cli.Options{ConfigPath: configPath})
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, svc.Suppliers)
	assert.NotNil(t, svc.Stats)

	validation, err := svc.Orchestrator.Validate(ctx)
	require.NoError(t, err)
	assert.True(t, validation.OK(), "validation: %v", validation.Err())

	report, err := svc.Orchestrator.Sync(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, report.Status)
	assert.Equal(t, 2, report.Totals().Loaded)

	latest, err := svc.Reports.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.ID, latest.ID)

	stats, err := svc.Stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, map[string]int64{"acme": 2}, stats.BySupplier)

	require.NoError(t, svc.Close())
	metrics, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `pim_etl_records_total{stage="loaded",supplier="acme"} 2`)
}

func TestBootstrap_HistoryPersists(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	ctx := context.Background()

	svc, err := bootstrap(ctx, cli.Options{ConfigPath: configPath})
	require.NoError(t, err)
	report, err := svc.Orchestrator.Sync(ctx, []string{"acme"})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	// A new process sees the last success
	svc, err = bootstrap(ctx, cli.Options{ConfigPath: configPath})
	require.NoError(t, err)
	defer svc.Close()

	last, err := svc.Reports.LastSuccess(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, report.StartedAt.Equal(last))
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl_config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database]\ntype = \"\"\n"), 0o600))

	_, err := bootstrap(context.Background(), cli.Options{ConfigPath: path})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestNewRegistry(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Suppliers = map[string]domain.SupplierDescriptor{
		"midocean": {Name: "MidOcean"},
		"acme":     {Options: map[string]string{"plugin": "jsonfeed"}},
		"globex":   {Options: map[string]string{"plugin": "JSONFeed"}},
		"unknown":  {},
	}

	registry, err := newRegistry(cfg, memory.NewProductStore())
	require.NoError(t, err)

	assert.Equal(t, []string{"acme", "globex", "midocean"}, registry.Suppliers())
	assert.Equal(t, []string{"memory", "mongodb"}, registry.Loaders())
	assert.NoError(t, registry.CheckSupplier("midocean"))

	var unknown *domain.UnknownComponentError
	assert.ErrorAs(t, registry.CheckSupplier("unknown"), &unknown)

	_, err = registry.Resolve(driven.RoleLoader, "postgres")
	assert.ErrorAs(t, err, &unknown)
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "etl_config.toml")

	require.NoError(t, writeSample(path, false))
	assert.ErrorIs(t, writeSample(path, false), domain.ErrAlreadyExists)
	require.NoError(t, writeSample(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "midocean")
}
