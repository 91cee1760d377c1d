package session

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
)

// ConfigPath is the health endpoint.
const ConfigPath = "/config"

// SupportedServerVersions is checked against the version reported by /config.
// A mismatch only logs a warning.
const SupportedServerVersions = ">= 0.8.0"

// ServerInfo is what TestConnectivity learned from the health endpoint.
type ServerInfo struct {
	// Version as reported by the server, empty when absent.
	Version string
	// Semver is the parsed version, nil when Version does not parse.
	Semver *semver.Version
}

type configResponse struct {
	Versions map[string]struct {
		Version string `json:"version"`
	} `json:"versions"`
}

// TestConnectivity issues GET /config. A transport error or a non-2xx status is
// marked errors.ErrConnectivity and carries a hint to re-run verbosely.
func (s *Session) TestConnectivity(ctx context.Context) (ServerInfo, error) {
	resp, err := s.Get(ctx, ConfigPath)
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		s.logger.Debugw("Connectivity check failed", logger.FieldHost, s.host, logger.FieldError, err)
		err = errors.Wrapf(err, "failed to connect to metadata service at %s", s.host)
		err = errors.Mark(err, errors.ErrConnectivity)
		return ServerInfo{}, errors.WithHint(err, "re-run with -vv to get more information")
	}

	info := ServerInfo{}
	var cfg configResponse
	if resp.Decode(&cfg) != nil {
		return info, nil
	}
	for _, v := range cfg.Versions {
		if v.Version != "" {
			info.Version = v.Version
			break
		}
	}
	if info.Version == "" {
		return info, nil
	}

	version, err := semver.NewVersion(info.Version)
	if err != nil {
		s.logger.Debugw("Server version is not semver", "version", info.Version, logger.FieldError, err)
		return info, nil
	}
	info.Semver = version

	if !SupportsVersion(version) {
		s.logger.Warnw("Metadata service version may not be supported",
			"version", info.Version,
			"supported", SupportedServerVersions)
	}
	return info, nil
}

// SupportsVersion reports whether v satisfies SupportedServerVersions.
// Pre-release versions are compared by their core version.
func SupportsVersion(v *semver.Version) bool {
	constraint, err := semver.NewConstraint(SupportedServerVersions)
	if err != nil {
		return true
	}
	core, err := v.SetPrerelease("")
	if err != nil {
		return constraint.Check(v)
	}
	return constraint.Check(&core)
}
