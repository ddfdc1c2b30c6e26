package hwprobe

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troian/toml"

	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
)

func helperWriteConfig(t *testing.T, content string) string {
	tmpFile, err := ioutil.TempFile("", "hwprobe-*.conf")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func helperUnsetEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, registry.BackendAuto, cfg.Backend)
	assert.Equal(t, "ioreg", cfg.IoregPath)
	assert.Empty(t, cfg.SnapshotDir)
}

func TestTryUpdateConfigFromFile(t *testing.T) {
	const sampleConfig = `
log_level = "debug"
backend = "ioreg"
snapshot_dir = "/tmp/snapshots"
`
	path := helperWriteConfig(t, sampleConfig)
	defer os.Remove(path)

	cfg := NewConfig()
	err := TryUpdateConfigFromFile(cfg, path)
	assert.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, registry.BackendIoreg, cfg.Backend)
	assert.Equal(t, "/tmp/snapshots", cfg.SnapshotDir)
	assert.Equal(t, "ioreg", cfg.IoregPath)
}

func TestHandleConfigSetup(t *testing.T) {
	helperUnsetEnv(t, envLogLevel, envBackend)

	t.Run("config-file-does-not-exist", func(t *testing.T) {
		cfg, err := HandleConfigSetup(filepath.Join(os.TempDir(), "hwprobe-missing", "hwprobe.conf"))
		assert.NoError(t, err)
		assert.Equal(t, NewConfig(), cfg)
	})

	t.Run("config-file-does-exist", func(t *testing.T) {
		path := helperWriteConfig(t, `backend = "iokit"`)
		defer os.Remove(path)

		cfg, err := HandleConfigSetup(path)
		assert.NoError(t, err)
		assert.Equal(t, registry.BackendIOKit, cfg.Backend)
	})

	t.Run("config-file-is-broken", func(t *testing.T) {
		path := helperWriteConfig(t, `backend = `)
		defer os.Remove(path)

		cfg, err := HandleConfigSetup(path)
		assert.Error(t, err)
		assert.Equal(t, NewConfig(), cfg)
	})

	t.Run("invalid-values-fall-back", func(t *testing.T) {
		path := helperWriteConfig(t, "log_level = \"verbose\"\nbackend = \"wmi\"\nioreg_path = \"\"\n")
		defer os.Remove(path)

		cfg, err := HandleConfigSetup(path)
		assert.Error(t, err)
		assert.Equal(t, LogLevelInfo, cfg.LogLevel)
		assert.Equal(t, registry.BackendAuto, cfg.Backend)
		assert.Equal(t, "ioreg", cfg.IoregPath)
	})

	t.Run("env-overrides-file", func(t *testing.T) {
		path := helperWriteConfig(t, "log_level = \"error\"\nbackend = \"iokit\"\n")
		defer os.Remove(path)

		os.Setenv(envLogLevel, "DEBUG")
		os.Setenv(envBackend, "ioreg")
		defer os.Unsetenv(envLogLevel)
		defer os.Unsetenv(envBackend)

		cfg, err := HandleConfigSetup(path)
		assert.NoError(t, err)
		assert.Equal(t, LogLevelDebug, cfg.LogLevel)
		assert.Equal(t, registry.BackendIoreg, cfg.Backend)
	})
}

func TestConfigPath(t *testing.T) {
	helperUnsetEnv(t, envConfigPath)
	assert.Equal(t, DefaultCfgPath, ConfigPath())

	os.Setenv(envConfigPath, "/tmp/custom.conf")
	defer os.Unsetenv(envConfigPath)
	assert.Equal(t, "/tmp/custom.conf", ConfigPath())
}

func TestDumpTomlRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.SnapshotDir = "/var/tmp/ioreg"

	loaded := &Config{}
	_, err := toml.Decode(cfg.DumpToml(), loaded)
	assert.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestRegistryOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.SnapshotDir = "testdata"
	assert.Equal(t, registry.Options{
		Backend:     registry.BackendAuto,
		IoregPath:   "ioreg",
		SnapshotDir: "testdata",
	}, cfg.RegistryOptions())
}
