package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:    StorageDriverBolt,
			Path:      filepath.Join("data", "littlesteps.db"),
			Directory: filepath.Join("data", "kv"),
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "littlesteps",
			Username: "user",
		},
		Auth: AuthConfig{
			BcryptCost: 10,
		},
		Reports: ReportsConfig{
			OutputDirectory: filepath.Join("outputs", "reports"),
		},
		Quiz: QuizConfig{
			Questions: 5,
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "valid config file with custom values",
			configContent: `storage:
  driver: file
  directory: custom/kv
auth:
  hash_passwords: true
  bcrypt_cost: 4
quiz:
  questions: 8
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Storage.Driver = StorageDriverFile
				cfg.Storage.Directory = "custom/kv"
				cfg.Auth = AuthConfig{HashPasswords: true, BcryptCost: 4}
				cfg.Quiz.Questions = 8
				return cfg
			},
		},
		{
			name: "explicit config file path",
			configContent: `storage:
  driver: memory
reports:
  output_directory: explicit/reports
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Storage.Driver = StorageDriverMemory
				cfg.Reports.OutputDirectory = "explicit/reports"
				return cfg
			},
		},
		{
			name: "environment overrides storage driver and database password",
			configContent: `storage:
  driver: bolt
`,
			env: map[string]string{
				"LITTLESTEPS_STORAGE_DRIVER": "mysql",
				"DB_PASSWORD":                "secret",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Storage.Driver = StorageDriverMySQL
				cfg.Database.Password = "secret"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `storage:
  driver: bolt
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown storage driver",
			configContent: `storage:
  driver: sqlite
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"driver must be one of [memory bolt file mysql]",
			},
		},
		{
			name: "bcrypt cost out of range",
			configContent: `auth:
  bcrypt_cost: 2
`,
			wantErr:           true,
			wantErrorContains: []string{"bcrypt_cost must be 4 or greater"},
		},
		{
			name: "seed file that does not exist",
			configContent: `seed:
  file: /nonexistent/sample.yml
`,
			wantErr:           true,
			wantErrorContains: []string{"seed.file must be an existing and readable file"},
		},
		{
			name: "zero quiz questions",
			configContent: `quiz:
  questions: 0
`,
			wantErr:           true,
			wantErrorContains: []string{"questions must be 1 or greater"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "custom.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644))
				}

				originalDir, err := os.Getwd()
				require.NoError(t, err)
				defer func() {
					require.NoError(t, os.Chdir(originalDir))
				}()
				require.NoError(t, os.Chdir(tempDir))
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestConfigLoader_Load_DotEnv(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".env"), []byte("DB_PASSWORD=from-dotenv\n"), 0644))

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, os.Chdir(originalDir))
		require.NoError(t, os.Unsetenv("DB_PASSWORD"))
	}()
	require.NoError(t, os.Chdir(tempDir))

	loader, err := NewConfigLoader("")
	require.NoError(t, err)
	got, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", got.Database.Password)
}

func TestFormValidator_Validate(t *testing.T) {
	type form struct {
		FirstName       string `json:"firstName" validate:"required"`
		Password        string `json:"password" validate:"required,notblank,min=4"`
		ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	}

	tests := []struct {
		name         string
		form         form
		wantContains []string
	}{
		{
			name: "valid form",
			form: form{FirstName: "Sarah", Password: "demo123", ConfirmPassword: "demo123"},
		},
		{
			name:         "missing first name",
			form:         form{Password: "demo123", ConfirmPassword: "demo123"},
			wantContains: []string{"firstName is a required field"},
		},
		{
			name:         "short password and mismatched confirmation",
			form:         form{FirstName: "Sarah", Password: "abc", ConfirmPassword: "abcd"},
			wantContains: []string{"password must be at least 4 characters", "confirmPassword must be equal to Password"},
		},
		{
			name:         "whitespace-only password",
			form:         form{FirstName: "Sarah", Password: "    ", ConfirmPassword: "    "},
			wantContains: []string{"password must not be blank"},
		},
	}

	v, err := NewFormValidator()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.form)
			if len(tt.wantContains) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
