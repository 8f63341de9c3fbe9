package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address    string `mapstructure:"address"`
	Port       int    `mapstructure:"port"`
	Mode       string `mapstructure:"mode"`
	Production bool   `mapstructure:"production"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	TTLHours   int    `mapstructure:"ttl_hours"`
}

// TTL returns the session lifetime, 7 days when unset.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type SecurityConfig struct {
	BcryptCost      int     `mapstructure:"bcrypt_cost"`
	EncryptionKey   string  `mapstructure:"encryption_key"`
	LoginRate       float64 `mapstructure:"login_rate"`
	LoginBurst      int     `mapstructure:"login_burst"`
	MaxFailedLogins int     `mapstructure:"max_failed_logins"`
	LockMinutes     int     `mapstructure:"lock_minutes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	ViewTTLHours int    `mapstructure:"view_ttl_hours"`
}

type AppSubConfig struct {
	PageSize            int `mapstructure:"page_size"`
	MaxPageSize         int `mapstructure:"max_page_size"`
	UploadMaxMB         int `mapstructure:"upload_max_mb"`
	UploadMaxMegapixels int `mapstructure:"upload_max_megapixels"`
}

// AdminSeed is the account created on first start when no admin exists.
type AdminSeed struct {
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	SecurityQuestion string `mapstructure:"security_question"`
	SecurityAnswer   string `mapstructure:"security_answer"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Redis    RedisConfig    `mapstructure:"redis"`
	App      AppSubConfig   `mapstructure:"app"`
	Admin    AdminSeed      `mapstructure:"admin"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
// A .env file in the working directory is applied to the environment first.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		_ = godotenv.Load()

		v := viper.New()
		setDefaults(v)

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. TTP_SERVER_PORT=9000
		v.SetEnvPrefix("TTP")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

// Default returns the built-in defaults without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "./data/portal.db")
	v.SetDefault("session.cookie_name", "app_session")
	v.SetDefault("session.ttl_hours", 7*24)
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.login_rate", 1.0)
	v.SetDefault("security.login_burst", 10)
	v.SetDefault("security.max_failed_logins", 5)
	v.SetDefault("security.lock_minutes", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("backup.dir", "./data/backups")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.view_ttl_hours", 30*24)
	v.SetDefault("app.page_size", 20)
	v.SetDefault("app.max_page_size", 100)
	v.SetDefault("app.upload_max_mb", 10)
	v.SetDefault("app.upload_max_megapixels", 40)
}
