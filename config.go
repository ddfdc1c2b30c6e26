package hwprobe

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/troian/toml"

	"github.com/cloudradar-monitoring/hwprobe/pkg/common"
	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
)

const (
	envConfigPath = "HWPROBE_CONFIG"
	envLogLevel   = "HWPROBE_LOG_LEVEL"
	envBackend    = "HWPROBE_BACKEND"

	defaultIoregPath = "ioreg"
)

// DefaultCfgPath is set per OS in defaults_*.go
var DefaultCfgPath string

type Config struct {
	LogLevel LogLevel `toml:"log_level" comment:"\"debug\", \"info\" or \"error\""`
	LogFile  string   `toml:"log" comment:"optional file receiving a copy of the diagnostics"`

	Backend     string `toml:"backend" comment:"registry backend: \"auto\", \"iokit\" or \"ioreg\""`
	IoregPath   string `toml:"ioreg_path" comment:"ioreg executable used by the \"ioreg\" backend"`
	SnapshotDir string `toml:"snapshot_dir" comment:"replay <dir>/<Class>.plist ioreg archives instead of reading the live registry"`
}

func NewConfig() *Config {
	return &Config{
		LogLevel:  LogLevelInfo,
		Backend:   registry.BackendAuto,
		IoregPath: defaultIoregPath,
	}
}

// ConfigPath returns the config file location, $HWPROBE_CONFIG taking precedence.
func ConfigPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return DefaultCfgPath
}

// TryUpdateConfigFromFile overlays the values found in the TOML file onto cfg.
func TryUpdateConfigFromFile(cfg *Config, configFilePath string) error {
	_, err := toml.DecodeFile(configFilePath, cfg)
	return errors.Wrapf(err, "could not parse config file %s", configFilePath)
}

// HandleConfigSetup builds the active config: defaults, then the config file if
// one exists, then environment overrides. The returned config is always usable;
// the error lists what was ignored along the way.
func HandleConfigSetup(configFilePath string) (*Config, error) {
	cfg := NewConfig()
	errs := common.ErrorCollector{}

	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); err == nil {
			if err = TryUpdateConfigFromFile(cfg, configFilePath); err != nil {
				errs.New(err)
				cfg = NewConfig()
			}
		} else if !os.IsNotExist(err) {
			errs.New(errors.Wrap(err, "could not stat config file"))
		}
	}

	cfg.applyEnv()
	errs.New(cfg.validate())

	return cfg, errs.Combine()
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = LogLevel(strings.ToLower(v))
	}
	if v := os.Getenv(envBackend); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
}

// validate resets invalid values to their defaults and reports them.
func (cfg *Config) validate() error {
	errs := common.ErrorCollector{}

	if !cfg.LogLevel.IsValid() {
		errs.Addf("invalid log_level %q, using %q", cfg.LogLevel, LogLevelInfo)
		cfg.LogLevel = LogLevelInfo
	}

	switch cfg.Backend {
	case registry.BackendAuto, registry.BackendIOKit, registry.BackendIoreg:
	case "":
		cfg.Backend = registry.BackendAuto
	default:
		errs.Addf("invalid backend %q, using %q", cfg.Backend, registry.BackendAuto)
		cfg.Backend = registry.BackendAuto
	}

	if cfg.IoregPath == "" {
		cfg.IoregPath = defaultIoregPath
	}

	return errs.Combine()
}

func (cfg *Config) RegistryOptions() registry.Options {
	return registry.Options{
		Backend:     cfg.Backend,
		IoregPath:   cfg.IoregPath,
		SnapshotDir: cfg.SnapshotDir,
	}
}

func (cfg *Config) DumpToml() string {
	buff := &bytes.Buffer{}

	enc := toml.NewEncoder(buff)
	if err := enc.Encode(cfg); err != nil {
		return err.Error()
	}

	return buff.String()
}
