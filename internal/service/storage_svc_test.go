package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"retail_service/pkg/config"
)

func TestNewStorageProvider_Local(t *testing.T) {
	provider, err := NewStorageProvider(config.StorageConfig{
		Provider: "local",
		LocalDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewStorageProvider() error = %v", err)
	}
	if provider == nil {
		t.Fatal("NewStorageProvider() 返回 nil")
	}
}

func TestNewStorageProvider_InvalidProvider(t *testing.T) {
	_, err := NewStorageProvider(config.StorageConfig{Provider: "invalid"})
	if err == nil {
		t.Error("期望返回错误，但未返回")
	}
}

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(config.StorageConfig{LocalDir: dir, PublicURL: "/media/"})
	if err != nil {
		t.Fatalf("初始化失败: %v", err)
	}

	ctx := context.Background()
	url, err := storage.Upload(ctx, []byte("thumb"), "thumbnails/avatars/1.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.HasPrefix(url, "/media/thumbnails/avatars/") || !strings.HasSuffix(url, ".jpg") {
		t.Errorf("Upload() url = %s", url)
	}

	full := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/media/")))
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("读取上传文件失败: %v", err)
	}
	if string(data) != "thumb" {
		t.Errorf("文件内容 = %q, want %q", data, "thumb")
	}

	if err := storage.Delete(ctx, url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("文件未被删除")
	}

	// 重复删除不报错
	if err := storage.Delete(ctx, url); err != nil {
		t.Errorf("重复删除 error = %v", err)
	}

	if err := storage.Delete(ctx, "https://elsewhere/x.jpg"); err == nil {
		t.Error("非本存储的 URL 应返回错误")
	}
}

func TestGenerateKey(t *testing.T) {
	key := generateKey("a.png")
	if !strings.HasSuffix(key, ".png") || strings.Count(key, "/") != 3 {
		t.Errorf("generateKey(a.png) = %s", key)
	}

	key = generateKey("thumbnails/products/noext")
	if !strings.HasPrefix(key, "thumbnails/products/") || !strings.HasSuffix(key, ".jpg") {
		t.Errorf("generateKey(noext) = %s", key)
	}
}
