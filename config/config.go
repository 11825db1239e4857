// Package config loads the application configuration from YAML files with
// environment variable overrides, via koanf.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."

	defaultTokenTTL          = 30 * 24 * time.Hour
	defaultMinPasswordLength = 6
	defaultTopTagsLimit      = 5
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
		// BaseURL is the externally visible origin, used when building
		// absolute links (e.g. share QR codes).
		BaseURL  string `json:"baseUrl" yaml:"baseUrl"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	Posts *PostsConfig `json:"posts" yaml:"posts"`

	// Uploads configuration for the blob-backed file storage.
	Uploads *UploadsConfig `json:"uploads" yaml:"uploads"`

	// PubSub configuration for post lifecycle event publishing.
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// ShareQR configuration for post share QR codes.
	ShareQR *ShareQRConfig `json:"shareQr" yaml:"shareQr"`
}

// PostgresConfig defines the primary connection and optional read replicas.
type PostgresConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	User            string        `json:"user" yaml:"user"`
	Password        string        `json:"password" yaml:"password"`
	DBName          string        `json:"dbName" yaml:"dbName"`
	SSLMode         string        `json:"sslMode" yaml:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`

	// ReplicaHosts route read traffic through gorm's dbresolver when set.
	ReplicaHosts []string `json:"replicaHosts" yaml:"replicaHosts"`
}

// AuthConfig defines authentication-related configuration.
type AuthConfig struct {
	// Secret signs identity tokens. Must be non-empty.
	Secret string `json:"secret" yaml:"secret"`

	// TokenTTL is the identity token lifetime. Defaults to 30 days.
	TokenTTL time.Duration `json:"tokenTtl" yaml:"tokenTtl"`

	MinPasswordLength int `json:"minPasswordLength" yaml:"minPasswordLength"`
	BcryptCost        int `json:"bcryptCost" yaml:"bcryptCost"`
}

// PostsConfig defines post-subsystem tunables.
type PostsConfig struct {
	// TopTagsLimit is the default size of the tag-frequency ranking.
	TopTagsLimit int `json:"topTagsLimit" yaml:"topTagsLimit"`
}

// UploadsConfig defines where uploaded binaries are stored.
type UploadsConfig struct {
	// BucketURL is a gocloud.dev bucket URL, e.g. "file:///var/scribe/uploads"
	// for local disk or any supported blob scheme.
	BucketURL string `json:"bucketUrl" yaml:"bucketUrl"`

	// PublicPath is the URL path prefix under which uploads are served.
	PublicPath string `json:"publicPath" yaml:"publicPath"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing.
type PubSubConfig struct {
	// Provider type: "local" for local HTTP push or "google" for Google Pub/Sub.
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider).
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider).
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider).
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// ShareQRConfig defines share QR code generation configuration.
type ShareQRConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// New loads the configuration for the environment named by APP_ENV
// (defaulting to "local") and applies defaults.
func New() (*Config, error) {
	currEnv := os.Getenv("APP_ENV")
	if currEnv == "" {
		currEnv = "local"
	}

	cfg, err := LoadWithEnv[Config](currEnv, "config")
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// LoadWithEnv loads <env>.yaml through koanf, overlaying environment
// variables. Env vars map to config paths with "__" as the nesting
// separator, e.g. AUTH__SECRET -> auth.secret.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for the config file.
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// AUTH__SECRET -> auth.secret
			key := strings.ToLower(strings.ReplaceAll(k, "__", "."))

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides.
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = defaultTokenTTL
	}
	if cfg.Auth.MinPasswordLength <= 0 {
		cfg.Auth.MinPasswordLength = defaultMinPasswordLength
	}

	if cfg.Posts == nil {
		cfg.Posts = &PostsConfig{}
	}
	if cfg.Posts.TopTagsLimit <= 0 {
		cfg.Posts.TopTagsLimit = defaultTopTagsLimit
	}

	if cfg.Uploads != nil && cfg.Uploads.PublicPath == "" {
		cfg.Uploads.PublicPath = "/uploads"
	}
}
