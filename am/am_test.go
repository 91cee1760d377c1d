package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/gmsctl/errors"
)

// clearEnv blanks every recognized variable; viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvSkipConfig, EnvGmsURL, EnvGmsHost, EnvGmsPort, EnvGmsProtocol,
		EnvGmsToken, EnvSystemClientID, EnvSystemClientSecret,
	} {
		t.Setenv(name, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolve_OverrideWinsOverEverything(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvGmsURL, "http://env:8080")
	t.Setenv(EnvGmsToken, "env-token")
	path := writeConfigFile(t, "gms:\n  server: http://file:8080\n  token: file-token\n")

	r := NewResolver(path)
	r.SetOverride("http://override:8080", "override-token")

	res, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://override:8080", res.Host)
	assert.Equal(t, "override-token", res.Token)
	assert.Equal(t, SourceOverride, res.HostSource)
}

func TestResolve_OverrideWithoutTokenDoesNotMerge(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvGmsToken, "env-token")
	path := writeConfigFile(t, "gms:\n  server: http://file:8080\n  token: file-token\n")

	r := NewResolver(path)
	r.SetOverride("http://override:8080", "")

	res, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://override:8080", res.Host)
	assert.Empty(t, res.Token)
}

func TestResolve_SkipConfigUsesEnvironmentOnly(t *testing.T) {
	for _, flag := range []string{"true", "TRUE", "1", "True"} {
		t.Run(flag, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvSkipConfig, flag)
			t.Setenv(EnvGmsURL, "http://env:8080")
			path := writeConfigFile(t, "gms:\n  server: http://file:8080\n  token: file-token\n")

			res, err := NewResolver(path).Resolve()
			require.NoError(t, err)
			assert.Equal(t, "http://env:8080", res.Host)
			assert.Empty(t, res.Token, "file token must not leak through when config is skipped")
			assert.Equal(t, SourceEnvironment, res.HostSource)
			assert.Equal(t, SourceNone, res.TokenSource)
		})
	}
}

func TestResolve_SkipConfigDoesNotCreateFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSkipConfig, "1")
	t.Setenv(EnvGmsURL, "http://env:8080")
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	_, err := NewResolver(path).Resolve()
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolve_FalsySkipFlagReadsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSkipConfig, "yes")
	path := writeConfigFile(t, "gms:\n  server: http://file:8080\n")

	res, err := NewResolver(path).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://file:8080", res.Host)
}

func TestResolve_EnvironmentBeatsFileFieldByField(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvGmsURL, "http://env:8080")
	path := writeConfigFile(t, "gms:\n  server: http://file:8080\n  token: file-token\n  timeout: 45s\n")

	res, err := NewResolver(path).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://env:8080", res.Host)
	assert.Equal(t, SourceEnvironment, res.HostSource)
	assert.Equal(t, "file-token", res.Token)
	assert.Equal(t, SourceConfigFile, res.TokenSource)
	assert.Equal(t, 45*time.Second, res.Timeout)
	assert.Equal(t, path, res.ConfigPath)
}

func TestResolve_BlankEnvironmentValueFallsBackToFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvGmsToken, "   ")
	path := writeConfigFile(t, "gms:\n  server: http://file:8080\n  token: file-token\n")

	res, err := NewResolver(path).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "file-token", res.Token)
}

func TestResolve_PortSynthesizesURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSkipConfig, "true")
	t.Setenv(EnvGmsHost, "gms.internal")
	t.Setenv(EnvGmsPort, "9002")
	t.Setenv(EnvGmsURL, "http://ignored:1234")

	res, err := NewResolver(filepath.Join(t.TempDir(), "unused")).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://gms.internal:9002", res.Host)

	t.Setenv(EnvGmsProtocol, "https")
	res, err = NewResolver(filepath.Join(t.TempDir(), "unused")).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "https://gms.internal:9002", res.Host)
}

// observedResolver returns a resolver whose log output is captured at warn level.
func observedResolver(t *testing.T) (*Resolver, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewResolver(filepath.Join(t.TempDir(), "unused"))
	r.logger = zap.New(core).Sugar()
	return r, logs
}

func TestResolve_LegacyHostUsedAsURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSkipConfig, "true")
	t.Setenv(EnvGmsHost, "http://legacy:8080")

	r, logs := observedResolver(t)
	res, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://legacy:8080", res.Host)
	assert.Equal(t, EnvGmsHost, res.HostEnvVar)

	warnings := logs.FilterMessageSnippet("Do not use " + EnvGmsHost).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Contains(t, warnings[0].Message, EnvGmsURL)
}

func TestResolve_LegacyHostWarningOnlyWithoutURL(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		host    string
		hostVar string
	}{
		{
			name:    "url variable set",
			env:     map[string]string{EnvGmsHost: "legacy", EnvGmsURL: "http://gms:8080"},
			host:    "http://gms:8080",
			hostVar: EnvGmsURL,
		},
		{
			name:    "port synthesis",
			env:     map[string]string{EnvGmsHost: "legacy", EnvGmsPort: "8080"},
			host:    "http://legacy:8080",
			hostVar: EnvHostFromPort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvSkipConfig, "true")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			r, logs := observedResolver(t)
			res, err := r.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.host, res.Host)
			assert.Equal(t, tt.hostVar, res.HostEnvVar)
			assert.Zero(t, logs.FilterMessageSnippet("Do not use").Len())
		})
	}
}

func TestResolve_NoHostIsConfigurationError(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSkipConfig, "true")

	_, err := NewResolver(filepath.Join(t.TempDir(), "unused")).Resolve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoHost))
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, errors.FlattenHints(err), EnvGmsURL)
}

func TestResolve_CreatesDefaultConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFile)

	res, err := NewResolver(path).Resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultGmsHost, res.Host)
	assert.Empty(t, res.Token)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server: http://localhost:8080")
	assert.Contains(t, string(data), "token: null")
}

func TestResolve_MalformedFileIsConfigurationError(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "gms: [unclosed\n")

	_, err := NewResolver(path).Resolve()
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.False(t, errors.Is(err, ErrNoHost), "a parse failure must not look like a missing host")
	assert.Contains(t, errors.FlattenHints(err), path)
}

func TestResolve_MissingServerIsConfigurationError(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "gms:\n  token: abc\n")

	_, err := NewResolver(path).Resolve()
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.False(t, errors.Is(err, ErrNoHost))
	assert.Contains(t, err.Error(), "gms.server")
}

func TestResolve_CachesFileUntilInvalidated(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "gms:\n  server: http://first:8080\n")
	r := NewResolver(path)

	res, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://first:8080", res.Host)

	require.NoError(t, os.WriteFile(path, []byte("gms:\n  server: http://second:8080\n"), 0600))
	res, err = r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://first:8080", res.Host, "cached value expected")

	r.Invalidate()
	res, err = r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://second:8080", res.Host)
}

func TestSystemAuth(t *testing.T) {
	clearEnv(t)
	r := NewResolver(filepath.Join(t.TempDir(), "unused"))
	assert.Empty(t, r.SystemAuth())

	t.Setenv(EnvSystemClientID, "__datahub_system")
	assert.Empty(t, r.SystemAuth(), "secret missing")

	t.Setenv(EnvSystemClientSecret, "s3cret")
	assert.Equal(t, "Basic __datahub_system:s3cret", r.SystemAuth())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"server set", Config{Gms: GmsConfig{Server: "http://localhost:8080"}}, false},
		{"server missing", Config{}, true},
		{"negative timeout", Config{Gms: GmsConfig{Server: "x", Timeout: -time.Second}}, true},
		{"zero rate limit is unlimited", Config{Gms: GmsConfig{Server: "x"}}, false},
		{"negative rate limit", Config{Gms: GmsConfig{Server: "x", MaxRequestsPerSecond: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "****", MaskToken("abc"))
	assert.Equal(t, "****wxyz", MaskToken("abcdefwxyz"))
}

func TestResolvedSettings(t *testing.T) {
	res := Resolved{
		Host: "http://h:8080", HostSource: SourceEnvironment,
		Token: "secret-token", TokenSource: SourceConfigFile,
		ConfigPath: "/home/u/.datahubenv",
	}

	settings := res.Settings()
	require.Len(t, settings, 2)
	assert.Equal(t, EnvGmsURL, settings[0].SourcePath)
	assert.Equal(t, "****oken", settings[1].Value)
	assert.Equal(t, "/home/u/.datahubenv", settings[1].SourcePath)
}

func TestResolvedSettings_HostVariableFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvGmsHost, "gms.internal")
	t.Setenv(EnvGmsPort, "9002")
	path := writeConfigFile(t, "gms:\n  server: http://file:8080\n  token: file-token\n")

	res, err := NewResolver(path).Resolve()
	require.NoError(t, err)

	settings := res.Settings()
	assert.Equal(t, SourceEnvironment, settings[0].Source)
	assert.Equal(t, EnvHostFromPort, settings[0].SourcePath)
	assert.Equal(t, SourceConfigFile, settings[1].Source)
	assert.Equal(t, path, settings[1].SourcePath)
}

func TestResolve_HostFromFileHasNoEnvVar(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "gms:\n  server: http://file:8080\n")

	res, err := NewResolver(path).Resolve()
	require.NoError(t, err)
	assert.Equal(t, SourceConfigFile, res.HostSource)
	assert.Empty(t, res.HostEnvVar)
}
