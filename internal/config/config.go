// Package config provides configuration parsing and validation for the
// mission-control binaries.
package config

import (
	"fmt"
)

// ServerConfig holds the configuration of the mission-control API server.
type ServerConfig struct {
	Port        string
	PostgresDSN string

	// RedisAddr enables the metrics collector when non-empty.
	RedisAddr string

	// KafkaBrokers enables the Kafka ingest path when non-empty.
	KafkaBrokers    string
	ActivityTopic   string
	ConsumerGroupID string

	WorkspaceDir    string
	OpenclawBin     string
	SettingsPath    string
	AlertStatusPath string

	AlertChannel string
	AlertTarget  string
	EmailFrom    string
}

// Validate checks required server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.WorkspaceDir == "" {
		return fmt.Errorf("workspace-dir cannot be empty")
	}
	if c.KafkaBrokers != "" {
		if c.ActivityTopic == "" {
			return fmt.Errorf("activity-topic cannot be empty when kafka-brokers is set")
		}
		if c.ConsumerGroupID == "" {
			return fmt.Errorf("consumer-group-id cannot be empty when kafka-brokers is set")
		}
	}
	return nil
}

// AutopilotConfig holds the configuration of the supervision loop.
type AutopilotConfig struct {
	PostgresDSN     string
	RedisAddr       string
	WorkspaceDir    string
	OpenclawBin     string
	SettingsPath    string
	AlertStatusPath string
	AlertChannel    string
	AlertTarget     string
	EmailFrom       string
	Once            bool
}

// Validate checks required autopilot configuration.
func (c *AutopilotConfig) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.WorkspaceDir == "" {
		return fmt.Errorf("workspace-dir cannot be empty")
	}
	return nil
}

// MaskDSN masks sensitive information in a DSN for logging.
func MaskDSN(dsn string) string {
	if len(dsn) > 50 {
		return dsn[:20] + "***" + dsn[len(dsn)-20:]
	}
	return "***"
}
