package clients

import (
	"strings"
	"sync"

	"github.com/ThalesGroup/apiclient/httpclient"
	"github.com/ansel1/merry"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables which override file configuration,
// e.g. APICLIENT_TRANSPORTS_BILLING_TIMEOUT.
const EnvPrefix = "APICLIENT"

// Config configures a Registry.
type Config struct {
	// Default is the name of the transport used when a client doesn't name one.
	// Defaults to apiclient.DefaultTransportName.
	Default string `mapstructure:"default"`

	// Transports maps transport names to the settings of their *http.Client.
	Transports map[string]httpclient.Config `mapstructure:"transports" validate:"dive"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the config's values.
func (c Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return merry.Prepend(err, "invalid transport config")
	}
	if c.Default != "" && strings.TrimSpace(c.Default) == "" {
		return merry.New("invalid transport config: default must not be blank")
	}
	for name := range c.Transports {
		if strings.TrimSpace(name) == "" {
			return merry.New("invalid transport config: transport names must not be blank")
		}
	}
	return nil
}

// LoadConfig reads a Config from a file (any format viper supports, e.g. YAML or JSON).
// Environment variables prefixed with EnvPrefix override values from the file.
// The result is validated.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, merry.Prependf(err, "reading transport config %s", path)
	}
	return ConfigFromViper(v)
}

// ConfigFromViper decodes a Config from an existing viper instance, and validates it.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, merry.Prepend(err, "decoding transport config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
