package am

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
)

// DefaultConfigPath returns ~/.datahubenv, or the bare file name when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFile
	}
	return filepath.Join(home, DefaultConfigFile)
}

// EnsureConfig creates the config file with the default host and no token when
// it does not exist yet. It reports whether a file was created.
func EnsureConfig(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Mark(errors.Wrapf(err, "failed to stat %s", configPath), errors.ErrConfiguration)
	}

	logger.Warnw("No config file found, generating one for you", logger.FieldFile, configPath)
	if err := WriteGmsConfig(configPath, DefaultGmsHost, "", true); err != nil {
		return false, err
	}
	return true, nil
}

// WriteGmsConfig persists host and token. With mergeWithPrevious, top-level
// sections already present in the file other than gms are kept.
func WriteGmsConfig(configPath, host, token string, mergeWithPrevious bool) error {
	gms := map[string]interface{}{
		"server": host,
		"token":  nil,
	}
	if token != "" {
		gms["token"] = token
	}

	config := map[string]interface{}{}
	if mergeWithPrevious {
		previous, err := readRawConfig(configPath)
		if err != nil {
			// ok to fail on this
			logger.Debugw("Failed to read previous config, not merging",
				logger.FieldFile, configPath,
				logger.FieldError, err)
		}
		for k, v := range previous {
			config[k] = v
		}
	}
	config["gms"] = gms

	return saveConfig(config, configPath)
}

// Write persists host and token through the resolver, invalidating its cache.
func (r *Resolver) Write(host, token string, mergeWithPrevious bool) error {
	r.mu.Lock()
	if r.watcher != nil {
		r.watcher.MarkOwnWrite()
	}
	r.cached = nil
	r.mu.Unlock()

	return WriteGmsConfig(r.configPath, host, token, mergeWithPrevious)
}

// readRawConfig returns the file contents as a generic map, or an empty map when
// the file does not exist.
func readRawConfig(configPath string) (map[string]interface{}, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	config := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return config, nil
}

// saveConfig writes the config with backup
func saveConfig(config map[string]interface{}, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, ConfigFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}

	return nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	// Check if file exists before backing up
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	// Delete oldest backup if exists
	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Log deletion failures (but don't fail config save)
		logger.Warnw("Failed to delete old backup", logger.FieldFile, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, BackupFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// isBackupFile checks if the file is a backup file (.back1, .back2, .back3)
func isBackupFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".back1") ||
		strings.HasSuffix(base, ".back2") ||
		strings.HasSuffix(base, ".back3")
}
