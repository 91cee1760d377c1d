package am

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
)

// ErrNoHost is returned by Resolve when no source yields a host. Resolve also
// marks it errors.ErrConfiguration.
var ErrNoHost = errors.New("metadata service host is not set")

// Override is a caller-supplied connection that replaces every other source.
type Override struct {
	URL   string
	Token string
}

// IsEmpty reports whether the override carries nothing.
func (o Override) IsEmpty() bool {
	return o.URL == "" && o.Token == ""
}

// Resolver merges the configuration sources. A Resolver is owned by the caller
// and replaces any process-wide override state: create one per process (or per
// test) and thread it through.
//
// The parsed config file is cached after the first successful load; Invalidate
// or a running Watcher clears it.
type Resolver struct {
	configPath string
	env        *viper.Viper
	logger     *zap.SugaredLogger

	mu       sync.Mutex
	override Override
	cached   *Config
	watcher  *ConfigWatcher
}

// NewResolver creates a resolver reading the given config file.
// An empty path selects ~/.datahubenv.
func NewResolver(configPath string) *Resolver {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	return &Resolver{
		configPath: configPath,
		env:        newEnvViper(),
		logger:     logger.ComponentLogger("am"),
	}
}

// ConfigPath returns the config file this resolver reads and writes.
func (r *Resolver) ConfigPath() string {
	return r.configPath
}

// Env returns the viper instance bound to the recognized environment variables.
func (r *Resolver) Env() *viper.Viper {
	return r.env
}

// SetOverride makes url/token take absolute precedence over file and environment.
// A Resolve running concurrently may observe either the old or the new value.
func (r *Resolver) SetOverride(url, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = Override{URL: url, Token: token}
}

// ClearOverride removes a previously set override.
func (r *Resolver) ClearOverride() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = Override{}
}

// Invalidate drops the cached config file so the next Resolve re-reads it.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

// Resolve determines the host and token to use.
//
// Errors are marked errors.ErrConfiguration: either the config file could not
// be created or parsed, or no host was found (ErrNoHost).
func (r *Resolver) Resolve() (Resolved, error) {
	env := EnvDetails(r.env, r.logger)

	r.mu.Lock()
	override := r.override
	r.mu.Unlock()

	var res Resolved
	switch {
	case !override.IsEmpty():
		res = Resolved{
			Host:        override.URL,
			Token:       override.Token,
			HostSource:  SourceOverride,
			TokenSource: SourceOverride,
		}

	case ShouldSkipConfig(r.env):
		res = Resolved{
			Host:        env.Host,
			Token:       env.Token,
			HostSource:  sourceIfSet(env.Host, SourceEnvironment),
			TokenSource: sourceIfSet(env.Token, SourceEnvironment),
		}

	default:
		cfg, err := r.loadFile()
		if err != nil {
			return Resolved{}, err
		}

		fileToken := ""
		if cfg.Gms.Token != nil {
			fileToken = *cfg.Gms.Token
		}

		res.Host, res.HostSource = firstNonBlank(
			candidate{env.Host, SourceEnvironment},
			candidate{cfg.Gms.Server, SourceConfigFile},
		)
		res.Token, res.TokenSource = firstNonBlank(
			candidate{env.Token, SourceEnvironment},
			candidate{fileToken, SourceConfigFile},
		)
		res.ConfigPath = r.configPath
		res.Timeout = cfg.Gms.Timeout
		res.MaxRequestsPerSecond = cfg.Gms.MaxRequestsPerSecond
	}

	if res.HostSource == SourceEnvironment {
		res.HostEnvVar = env.HostVar
	}

	if strings.TrimSpace(res.Host) == "" {
		return res, errors.WithHintf(errors.Mark(ErrNoHost, errors.ErrConfiguration),
			"run 'gmsctl init' or set the %s environment variable", EnvGmsURL)
	}

	if logger.ShouldOutput(logger.Verbosity, logger.OutputConfig) {
		r.logger.Infow("Resolved metadata service connection",
			logger.FieldHost, res.Host,
			"host_source", res.HostSource,
			"token_source", res.TokenSource)
	}

	return res, nil
}

// SystemAuth returns the system client credential from the environment, if any.
func (r *Resolver) SystemAuth() string {
	return SystemAuth(r.env)
}

// loadFile ensures the config file exists and returns its parsed contents,
// using the cache when possible.
func (r *Resolver) loadFile() (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached, nil
	}

	if _, err := EnsureConfig(r.configPath); err != nil {
		return nil, err
	}

	cfg, err := LoadFromFile(r.configPath)
	if err != nil {
		return nil, err
	}

	r.cached = cfg
	return cfg, nil
}

// LoadFromFile reads and validates a YAML config file.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, configFileError(err, configPath, "failed to read config file %s")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, configFileError(err, configPath, "failed to unmarshal config from %s")
	}

	if err := config.Validate(); err != nil {
		return nil, configFileError(err, configPath, "invalid config file %s")
	}

	return &config, nil
}

func configFileError(err error, configPath, format string) error {
	err = errors.Wrapf(err, format, configPath)
	err = errors.Mark(err, errors.ErrConfiguration)
	return errors.WithHintf(err, "please check your %s", configPath)
}

type candidate struct {
	value  string
	source Source
}

// firstNonBlank returns the first candidate whose value is not blank.
func firstNonBlank(candidates ...candidate) (string, Source) {
	for _, c := range candidates {
		if strings.TrimSpace(c.value) != "" {
			return c.value, c.source
		}
	}
	return "", SourceNone
}

func sourceIfSet(value string, source Source) Source {
	if strings.TrimSpace(value) == "" {
		return SourceNone
	}
	return source
}
