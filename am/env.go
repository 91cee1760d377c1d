package am

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Recognized environment variables
const (
	EnvSkipConfig         = "DATAHUB_SKIP_CONFIG"
	EnvGmsURL             = "DATAHUB_GMS_URL"
	EnvGmsHost            = "DATAHUB_GMS_HOST"
	EnvGmsPort            = "DATAHUB_GMS_PORT"
	EnvGmsProtocol        = "DATAHUB_GMS_PROTOCOL"
	EnvGmsToken           = "DATAHUB_GMS_TOKEN"
	EnvSystemClientID     = "DATAHUB_SYSTEM_CLIENT_ID"
	EnvSystemClientSecret = "DATAHUB_SYSTEM_CLIENT_SECRET"
)

// Viper keys the environment variables are bound to
const (
	keySkipConfig   = "skip_config"
	keyGmsURL       = "gms.url"
	keyGmsHost      = "gms.host"
	keyGmsPort      = "gms.port"
	keyGmsProtocol  = "gms.protocol"
	keyGmsToken     = "gms.token"
	keyClientID     = "system.client_id"
	keyClientSecret = "system.client_secret"
)

// BindEnvVars explicitly binds every recognized variable. Values are read from
// the process environment each time they are looked up, and an empty variable
// counts as unset.
func BindEnvVars(v *viper.Viper) {
	v.BindEnv(keySkipConfig, EnvSkipConfig)
	v.BindEnv(keyGmsURL, EnvGmsURL)
	v.BindEnv(keyGmsHost, EnvGmsHost)
	v.BindEnv(keyGmsPort, EnvGmsPort)
	v.BindEnv(keyGmsProtocol, EnvGmsProtocol)
	v.BindEnv(keyGmsToken, EnvGmsToken)
	v.BindEnv(keyClientID, EnvSystemClientID)
	v.BindEnv(keyClientSecret, EnvSystemClientSecret)
}

// newEnvViper returns a viper instance that only knows about the environment.
func newEnvViper() *viper.Viper {
	v := viper.New()
	BindEnvVars(v)
	return v
}

// EnvHostFromPort names the variables a port-synthesized host is built from.
const EnvHostFromPort = EnvGmsHost + "+" + EnvGmsPort

// EnvConnection is the connection described by the environment.
type EnvConnection struct {
	Host  string
	Token string
	// HostVar is the variable (or EnvHostFromPort) Host came from, empty when unset.
	HostVar string
}

// EnvDetails returns the host and token as described by the environment.
//
// When a port is set the URL is synthesized as protocol://host:port and any
// explicit URL variable is ignored. Otherwise the URL variable wins, falling
// back to the legacy host variable with a deprecation warning.
func EnvDetails(v *viper.Viper, log *zap.SugaredLogger) EnvConnection {
	conn := EnvConnection{Token: v.GetString(keyGmsToken)}
	legacyHost := v.GetString(keyGmsHost)

	if v.IsSet(keyGmsPort) {
		protocol := v.GetString(keyGmsProtocol)
		if protocol == "" {
			protocol = DefaultProtocol
		}
		conn.Host = fmt.Sprintf("%s://%s:%s", protocol, legacyHost, v.GetString(keyGmsPort))
		conn.HostVar = EnvHostFromPort
		return conn
	}

	if url := v.GetString(keyGmsURL); url != "" {
		conn.Host = url
		conn.HostVar = EnvGmsURL
		return conn
	}

	if legacyHost != "" {
		if log != nil {
			log.Warnf("Do not use %s as URL. Use %s instead", EnvGmsHost, EnvGmsURL)
		}
		conn.Host = legacyHost
		conn.HostVar = EnvGmsHost
	}
	return conn
}

// ShouldSkipConfig reports whether DATAHUB_SKIP_CONFIG is "true" or "1" (any case).
func ShouldSkipConfig(v *viper.Viper) bool {
	return isTruthy(v.GetString(keySkipConfig))
}

func isTruthy(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1"
}

// SystemAuth returns the system client credential header value when both the
// client id and secret are set.
//
// The value is the literal "Basic {id}:{secret}" the metadata service expects
// from system clients; it is not RFC 7617 base64 encoding.
func SystemAuth(v *viper.Viper) string {
	id := v.GetString(keyClientID)
	secret := v.GetString(keyClientSecret)
	if !v.IsSet(keyClientID) || !v.IsSet(keyClientSecret) {
		return ""
	}
	return fmt.Sprintf("Basic %s:%s", id, secret)
}
