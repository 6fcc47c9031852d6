package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "RecipeManager", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiration)
	assert.Equal(t, "auth_token", cfg.Auth.CookieName)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxFileSize)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, 100, cfg.Importer.IngredientLimit)
	assert.Equal(t, 6, cfg.Importer.MealsPerCategory)
	assert.ElementsMatch(t, []string{"image/jpeg", "image/png", "image/gif", "image/webp"}, cfg.Storage.AllowedTypes)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RECIPEMANAGER_SERVER_PORT", "9090")
	t.Setenv("RECIPEMANAGER_DATABASE_DRIVER", "postgres")
	t.Setenv("RECIPEMANAGER_AUTH_JWT_EXPIRATION", "2h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiration)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("app:\n  name: Kitchen\nimporter:\n  meals_per_category: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Kitchen", cfg.App.Name)
	assert.Equal(t, 2, cfg.Importer.MealsPerCategory)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"BadPort", func(c *Config) { c.Server.Port = 0 }},
		{"UnknownDriver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"ShortSecretInProduction", func(c *Config) {
			c.App.Environment = "production"
			c.Auth.JWTSecret = "short"
		}},
		{"S3WithoutBucket", func(c *Config) { c.Storage.Provider = "s3" }},
		{"SMTPWithoutHost", func(c *Config) { c.Email.Provider = "smtp" }},
		{"UnknownEmailProvider", func(c *Config) { c.Email.Provider = "carrier-pigeon" }},
		{"ZeroImportRate", func(c *Config) { c.Importer.RequestsPerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConnectionStrings(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "db",
			Port:     5432,
			Database: "recipes",
			Username: "app",
			Password: "p@ss word",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{Host: "cache", Port: 6379},
	}

	assert.Equal(t, "host=db port=5432 user=app password=p@ss word dbname=recipes sslmode=disable", cfg.GetDSN())
	assert.Contains(t, cfg.DSNForHost("replica-1"), "host=replica-1 ")
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/recipes?sslmode=disable", cfg.GetMigrationURL())
	assert.Equal(t, "cache:6379", cfg.GetRedisAddr())
}
