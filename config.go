// config.go — deployment settings of the bridge.
//
// Settings come from an optional YAML file, then environment overrides:
//
//	PGGUARD_HOST_VERSION  host major version (11..17)
//	PGGUARD_BACKTRACE     "1"/"full" to capture backtraces on panics
package pgguard

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// DefaultHostVersion is used when no version is configured.
const DefaultHostVersion HostVersion = 16

// Config holds the settings a Backend is built from.
type Config struct {
	// HostVersion selects the severity scale and diagnostic convention.
	HostVersion HostVersion `yaml:"host_version"`
	// Backtrace makes the panic hook capture a backtrace.
	Backtrace bool `yaml:"backtrace"`
	// SkipThreadCheck disables the host-thread affinity check. Only test
	// hosts that are safe to call from any thread should set it.
	SkipThreadCheck bool `yaml:"skip_thread_check"`
	// Metrics configures prometheus metric names.
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig configures metric naming.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		HostVersion: DefaultHostVersion,
		Backtrace:   BacktraceFromEnv(),
		Metrics:     MetricsConfig{Namespace: "pgguard"},
	}
}

// LoadConfig reads a YAML config file over the defaults and applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
		if err != nil {
			return Config{}, fmt.Errorf("can't read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("can't parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from PGGUARD_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("PGGUARD_HOST_VERSION"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PGGUARD_HOST_VERSION %q: %w", v, err)
		}
		c.HostVersion = HostVersion(n)
	}
	if _, ok := os.LookupEnv("PGGUARD_BACKTRACE"); ok {
		c.Backtrace = BacktraceFromEnv()
	}
	return nil
}

var metricNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	errs := new(multierror.Error)
	if !c.HostVersion.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("host_version %d is outside the supported range %d..%d",
			c.HostVersion, MinHostVersion, MaxHostVersion))
	}
	if c.Metrics.Namespace != "" && !metricNameRe.MatchString(c.Metrics.Namespace) {
		errs = multierror.Append(errs, fmt.Errorf("metrics namespace %q is not a valid metric name", c.Metrics.Namespace))
	}
	return errs.ErrorOrNil()
}

// HookOptions returns the InstallPanicHook options matching c.
func (c Config) HookOptions() []HookOption {
	return []HookOption{CaptureBacktrace(c.Backtrace)}
}
