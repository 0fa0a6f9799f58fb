package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type AppConfig struct {
	ServerAddr string `mapstructure:"SERVER_ADDR" validate:"min=2"`
	GinMode    string `mapstructure:"GIN_MODE" validate:"min=4"`
	DataDir    string `mapstructure:"DATA_DIR" validate:"min=1"`

	// StorageMode picks the durable tier: bolt and file run against
	// local durable state, memory skips the durable tier entirely.
	StorageMode string `mapstructure:"STORAGE_MODE" validate:"oneof=memory bolt file"`

	// RemoteAPIURL empty means the remote tier is skipped.
	RemoteAPIURL  string        `mapstructure:"REMOTE_API_URL" validate:"omitempty,url"`
	RemoteTimeout time.Duration `mapstructure:"REMOTE_TIMEOUT" validate:"nonzero_duration"`
}

func (c *AppConfig) Validate() error {
	v := validator.New()

	_ = v.RegisterValidation("nonzero_duration", func(fl validator.FieldLevel) bool {
		if d, ok := fl.Field().Interface().(time.Duration); ok {
			return d > 0
		} else {
			return false
		}
	})
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}

func LoadAppConfig(name, ext string, paths ...string) (*AppConfig, error) {
	for _, path := range paths {
		viper.AddConfigPath(path)
	}
	viper.SetConfigName(name)
	viper.SetConfigType(ext)
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("DATA_DIR", "./data/server")
	viper.SetDefault("STORAGE_MODE", "bolt")
	viper.SetDefault("REMOTE_API_URL", "")
	viper.SetDefault("REMOTE_TIMEOUT", 15*time.Second)

	err := viper.ReadInConfig()

	if err != nil {
		return nil, err
	}
	cfg := &AppConfig{}
	err = viper.Unmarshal(cfg)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
