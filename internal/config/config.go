package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverBolt   = "bolt"
	StorageDriverFile   = "file"
	StorageDriverMySQL  = "mysql"
)

type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory bolt file mysql"`
	// Path is the bbolt database file used by the bolt driver.
	Path string `mapstructure:"path" validate:"required_if=Driver bolt"`
	// Directory holds one JSON file per key for the file driver.
	Directory string `mapstructure:"directory" validate:"required_if=Driver file"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type AuthConfig struct {
	// HashPasswords stores new and updated teacher passwords as bcrypt hashes.
	// Existing plaintext records keep authenticating either way.
	HashPasswords bool `mapstructure:"hash_passwords"`
	BcryptCost    int  `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

type SeedConfig struct {
	// File replaces the embedded sample dataset when set.
	File string `mapstructure:"file" validate:"omitempty,file"`
}

type ReportsConfig struct {
	Template        string `mapstructure:"template" validate:"omitempty,file"`
	OutputDirectory string `mapstructure:"output_directory"`
}

type QuizConfig struct {
	Questions int `mapstructure:"questions" validate:"min=1,max=20"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/littlesteps")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("storage.driver", StorageDriverBolt)
	v.SetDefault("storage.path", filepath.Join("data", "littlesteps.db"))
	v.SetDefault("storage.directory", filepath.Join("data", "kv"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "littlesteps")
	v.SetDefault("database.username", "user")
	v.SetDefault("auth.hash_passwords", false)
	v.SetDefault("auth.bcrypt_cost", 10)
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("reports.template", "")
	v.SetDefault("reports.output_directory", filepath.Join("outputs", "reports"))
	v.SetDefault("quiz.questions", 5)

	// A local .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := v.BindEnv("storage.driver", "LITTLESTEPS_STORAGE_DRIVER"); err != nil {
		return nil, fmt.Errorf("failed to bind LITTLESTEPS_STORAGE_DRIVER environment variable: %w", err)
	}
	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
