package am

// Source represents where a resolved value came from
type Source string

const (
	SourceNone        Source = "none"
	SourceOverride    Source = "override"    // Resolver.SetOverride
	SourceEnvironment Source = "environment" // DATAHUB_GMS_* env vars
	SourceConfigFile  Source = "config_file" // ~/.datahubenv
)

// SettingInfo describes one resolved setting and where it came from
type SettingInfo struct {
	Key        string `json:"key" yaml:"key"`
	Value      string `json:"value" yaml:"value"`
	Source     Source `json:"source" yaml:"source"`
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`
}

// Settings lists the resolved host and token with their sources. The token
// value is masked.
func (r Resolved) Settings() []SettingInfo {
	return []SettingInfo{
		{Key: "gms.server", Value: r.Host, Source: r.HostSource, SourcePath: r.sourcePath(r.HostSource, r.hostEnvVar())},
		{Key: "gms.token", Value: MaskToken(r.Token), Source: r.TokenSource, SourcePath: r.sourcePath(r.TokenSource, EnvGmsToken)},
	}
}

func (r Resolved) hostEnvVar() string {
	if r.HostEnvVar == "" {
		return EnvGmsURL
	}
	return r.HostEnvVar
}

func (r Resolved) sourcePath(source Source, envVar string) string {
	switch source {
	case SourceConfigFile:
		return r.ConfigPath
	case SourceEnvironment:
		return envVar
	default:
		return ""
	}
}

// MaskToken hides all but the last four characters of a token.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
