package cooldown

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cooldown.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
storage_type: file
path: /var/lib/bot/cooldowns.json
execution_period: 60
cooldown_duration: 300
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		StorageType:      StorageFile,
		Path:             "/var/lib/bot/cooldowns.json",
		ExecutionPeriod:  60,
		CooldownDuration: 300,
	}, cfg)
}

func TestLoadConfig_RedisDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "storage_type: redis\ncooldown_duration: 30\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRedisKey, cfg.RedisKey)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "storage_type: [file"))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_ValidateAndPrepare(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default storage is file", cfg: Config{Path: "c.json", ExecutionPeriod: 1, CooldownDuration: 1}},
		{name: "memory needs no path", cfg: Config{StorageType: StorageMemory}},
		{name: "unknown storage", cfg: Config{StorageType: "sqlite"}, wantErr: true},
		{name: "file without path", cfg: Config{StorageType: StorageFile}, wantErr: true},
		{name: "negative execution period", cfg: Config{StorageType: StorageMemory, ExecutionPeriod: -1}, wantErr: true},
		{name: "negative cooldown", cfg: Config{StorageType: StorageMemory, CooldownDuration: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.ValidateAndPrepare()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewStore(t *testing.T) {
	_, client := newTestRedis(t)

	store, err := NewStore(&Config{StorageType: StorageFile, Path: "c.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &fileStore{}, store)

	store, err = NewStore(&Config{StorageType: StorageMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memoryStore{}, store)

	store, err = NewStore(&Config{StorageType: StorageRedis, RedisKey: "k"}, client)
	require.NoError(t, err)
	assert.IsType(t, &redisStore{}, store)

	_, err = NewStore(&Config{StorageType: StorageRedis}, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewStore(&Config{StorageType: "etcd"}, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewStore(nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
