package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != "file" {
		t.Fatalf("storage driver = %q, want file", cfg.StorageDriver)
	}
	if cfg.JWTAccessExpiry != 24*time.Hour {
		t.Fatalf("access expiry = %v, want 24h", cfg.JWTAccessExpiry)
	}
	if cfg.MaxImageBytes != 5<<20 {
		t.Fatalf("max image bytes = %d, want %d", cfg.MaxImageBytes, 5<<20)
	}
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
db_host: db.internal
db_password: from-file
jwt_secret: file-secret
jwt_access_expiry: 30m
storage_driver: minio
storage_endpoint: minio:9000
storage_bucket: images
storage_use_ssl: true
max_image_bytes: 1024
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", cfgPath)
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STORAGE_ENDPOINT", "")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("STORAGE_USE_SSL", "")
	t.Setenv("MAX_IMAGE_BYTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBHost != "db.internal" {
		t.Fatalf("db host = %q, want db.internal", cfg.DBHost)
	}
	if cfg.DBPassword != "from-env" {
		t.Fatalf("db password = %q, want env override", cfg.DBPassword)
	}
	if cfg.JWTSecret != "file-secret" {
		t.Fatalf("jwt secret = %q, want file-secret", cfg.JWTSecret)
	}
	if cfg.JWTAccessExpiry != 30*time.Minute {
		t.Fatalf("access expiry = %v, want 30m", cfg.JWTAccessExpiry)
	}
	if !cfg.StorageUseSSL {
		t.Fatalf("storage use ssl = false, want true")
	}
	if cfg.MaxImageBytes != 1024 {
		t.Fatalf("max image bytes = %d, want 1024", cfg.MaxImageBytes)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{JWTSecret: "s", DBPassword: "p", StorageDriver: "file", StorageBaseDir: "uploads"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.StorageDriver = "minio"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected minio without endpoint to fail")
	}

	cfg.StorageDriver = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}

	cfg = &Config{DBPassword: "p", StorageDriver: "mem"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing jwt secret to fail")
	}
}
