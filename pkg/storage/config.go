package storage

import (
	"os"
	"path/filepath"
)

// Config selects and configures a backend. Only the section matching
// Driver is read.
type Config struct {
	Driver   Driver         `toml:"driver"`
	File     FileConfig     `toml:"file"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Mongo    MongoConfig    `toml:"mongo"`
	S3       S3Config       `toml:"s3"`
}

// FileConfig configures the file driver.
type FileConfig struct {
	Dir string `toml:"dir"` // defaults to DefaultDir()
}

// SQLiteConfig configures the sqlite driver.
type SQLiteConfig struct {
	Path string `toml:"path"` // defaults to biotree.db under DefaultDir()
}

// PostgresConfig configures the postgres driver.
type PostgresConfig struct {
	DSN string `toml:"dsn"`
}

// RedisConfig configures the redis driver.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the mongo driver.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// S3Config configures the s3 driver. Empty credentials fall back to the
// default AWS credential chain.
type S3Config struct {
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"` // set for MinIO and other S3-compatible services
	Prefix          string `toml:"prefix"`
	PathStyle       bool   `toml:"path_style"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

// DefaultConfig returns a file-backed configuration with service defaults
// filled in for the other drivers.
func DefaultConfig() Config {
	return Config{
		Driver: DriverFile,
		Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "biotree:"},
		Mongo:  MongoConfig{URI: "mongodb://localhost:27017", Database: "biotree", Collection: "snapshots"},
		S3:     S3Config{Region: "us-east-1"},
	}
}

// DefaultDir returns the data directory: $XDG_DATA_HOME/biotree, or
// ~/.local/share/biotree when XDG_DATA_HOME is unset.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "biotree"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "biotree"), nil
}
