package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

// Configuration is the full adapter configuration.
type Configuration struct {
	Adapter Adapter `mapstructure:"adapter"`
}

// Adapter configures the wire endpoints of the exchange.
type Adapter struct {
	// Endpoint receives one POSTed wire request per impression. Required.
	Endpoint string `mapstructure:"endpoint"`
	// UserSyncURL is the pixel sync endpoint. Optional; without it
	// GetUserSyncs returns nothing.
	UserSyncURL string `mapstructure:"usersync_url"`
}

// New uses viper to get our config. Viper is set up to read from config
// files and environment variables before falling back to the defaults set
// in SetupViper.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (cfg *Configuration) validate() error {
	if cfg.Adapter.Endpoint == "" {
		return errors.New("adapter.endpoint is required")
	}
	if _, err := url.ParseRequestURI(cfg.Adapter.Endpoint); err != nil {
		return fmt.Errorf("adapter.endpoint is invalid: %v", err)
	}
	if cfg.Adapter.UserSyncURL != "" {
		if _, err := url.ParseRequestURI(cfg.Adapter.UserSyncURL); err != nil {
			return fmt.Errorf("adapter.usersync_url is invalid: %v", err)
		}
	}
	return nil
}

// SetupViper sets the viper defaults and wires env var overrides. filename
// is the config file to search for, without the extension.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("adapter.endpoint", "https://d5p.de/x/prebid/openrtb")
	v.SetDefault("adapter.usersync_url", "https://d5p.de/x/prebid/usersync")

	v.SetEnvPrefix("DPX")
	v.AutomaticEnv()
	v.ReadInConfig()
}
