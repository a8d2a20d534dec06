package cooldown

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Valid storage types
var validStorage = map[string]bool{
	StorageFile:   true,
	StorageMemory: true,
	StorageRedis:  true,
}

// Config holds the tracker configuration.
type Config struct {
	StorageType string `yaml:"storage_type"` // "file", "memory" or "redis"
	Path        string `yaml:"path"`         // store file, required for "file"
	RedisKey    string `yaml:"redis_key"`    // hash key, defaults to DefaultRedisKey

	ExecutionPeriod  int64 `yaml:"execution_period"`  // seconds a group may keep triggering before cooldown
	CooldownDuration int64 `yaml:"cooldown_duration"` // seconds the cooldown lasts
}

// LoadConfig reads a YAML config file and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.ValidateAndPrepare(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateAndPrepare validates the raw config and fills in defaults.
func (c *Config) ValidateAndPrepare() error {
	if c.StorageType == "" {
		c.StorageType = StorageFile
	}
	if !validStorage[c.StorageType] {
		return fmt.Errorf("%w: invalid storage_type: %s, must be '%s', '%s' or '%s'", ErrInvalidConfig, c.StorageType, StorageFile, StorageMemory, StorageRedis)
	}
	if c.StorageType == StorageFile && c.Path == "" {
		return fmt.Errorf("%w: storage_type '%s' requires a path", ErrInvalidConfig, StorageFile)
	}
	if c.StorageType == StorageRedis && c.RedisKey == "" {
		c.RedisKey = DefaultRedisKey
	}

	if err := validateDurations(c.ExecutionPeriod, c.CooldownDuration); err != nil {
		return err
	}
	if c.CooldownDuration == 0 {
		log.Warn().Msg("cooldown_duration is 0, groups will never be in cooldown")
	}
	return nil
}

func validateDurations(executionPeriod, cooldownDuration int64) error {
	if executionPeriod < 0 {
		return fmt.Errorf("%w: execution_period %d must not be negative", ErrInvalidConfig, executionPeriod)
	}
	if cooldownDuration < 0 {
		return fmt.Errorf("%w: cooldown_duration %d must not be negative", ErrInvalidConfig, cooldownDuration)
	}
	return nil
}

// NewStore builds the Store selected by the config.
// client is only used, and then required, for the redis storage type.
func NewStore(cfg *Config, client redis.Cmdable) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	switch cfg.StorageType {
	case StorageFile:
		return NewFileStore(cfg.Path), nil
	case StorageMemory:
		return NewMemoryStore(), nil
	case StorageRedis:
		if client == nil {
			return nil, fmt.Errorf("%w: storage_type '%s' requires a redis client", ErrInvalidConfig, StorageRedis)
		}
		return NewRedisStore(client, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("%w: invalid storage_type: %s", ErrInvalidConfig, cfg.StorageType)
	}
}
