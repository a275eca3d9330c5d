package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
runtime:
  env: production
sqlite:
  url: file:catalog.db
cache:
  ttl: 5m
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if !cfg.Runtime.IsProduction() {
		t.Error("期望 production 运行时")
	}
	if !cfg.SQLite.Bound() {
		t.Error("期望直连数据库已绑定")
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("期望 cache.ttl=5m，实际=%s", cfg.Cache.TTL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CATALOG_SERVER_PORT", "9090")
	t.Setenv("CATALOG_RUNTIME_ENV", "development")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望环境变量覆盖端口为 9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("期望 log.level=debug，实际=%s", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 8080, MaxBodyBytes: 1024},
		Runtime: RuntimeConfig{Env: "development"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	cfg.Runtime.Env = "staging"
	if err := cfg.Validate(); err == nil {
		t.Error("非法 runtime.env 应报错")
	}

	cfg.Runtime.Env = "production"
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("非法端口应报错")
	}
}
