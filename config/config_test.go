package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, 1024, cfg.InboxSize)
	require.Equal(t, 64<<20, cfg.BatchByteCeiling)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exchcore.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir = "/var/lib/exchcore"
inbox_size = 4096
batch_byte_ceiling = 1048576

[logging]
env = "prod"
file = "/var/log/exchcore.log"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/exchcore", cfg.DataDir)
	require.Equal(t, 4096, cfg.InboxSize)
	require.Equal(t, 1<<20, cfg.BatchByteCeiling)
	require.Equal(t, "prod", cfg.Logging.Env)
}

func TestLoadRejectsNegativeInbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exchcore.toml")
	require.NoError(t, os.WriteFile(path, []byte("inbox_size = -1\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "inbox_size")
}
