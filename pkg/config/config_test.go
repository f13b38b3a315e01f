package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, 200, cfg.Thumbnail.Width)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: \"9090\"\nqueue:\n  workers: 8\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
