package conf

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Log      LogConfig
	Auth     AuthConfig
	Upload   UploadConfig
	SMTP     SMTPConfig
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig controls the identity gate. With Enabled=false every route
// trusts the caller-supplied user_id.
type AuthConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Mode        string `mapstructure:"mode"` // "jwt" or "provider"
	JWTSecret   string `mapstructure:"jwt_secret"`
	ProviderURL string `mapstructure:"provider_url"`
}

type UploadConfig struct {
	MaxSizeMB         int64    `mapstructure:"max_size_mb"`
	LimitExtensions   bool     `mapstructure:"limit_extensions"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Upload.MaxSizeMB == 0 {
		c.Upload.MaxSizeMB = 16 * 1000
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{"txt", "pdf", "png", "jpg", "jpeg", "gif", "docx"}
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = "jwt"
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MaxSizeBytes returns the upload size cap in bytes, 0 meaning no cap.
func (c *UploadConfig) MaxSizeBytes() int64 {
	return c.MaxSizeMB << 20
}

// ExtensionAllowed reports whether the upload allow-list permits the
// filename's extension. The check is a no-op unless limiting is switched
// on; a file without an extension is rejected when it is.
func (c *UploadConfig) ExtensionAllowed(filename string) bool {
	if !c.LimitExtensions {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range c.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
