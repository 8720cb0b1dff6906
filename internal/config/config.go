package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tcfw/govern/internal/utils/logging"
)

var (
	defaults = map[string]interface{}{
		"verbose": false,
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("govern")
	viper.AddConfigPath("/etc/govern/")
	viper.AddConfigPath("$HOME/.govern")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("GOVERN")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logging.Entry().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return build()
}

// build assembles the config from whatever viper currently holds
func build() (*Config, error) {
	c := &Config{}
	var err error

	c.population, err = buildPopulationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "population config")
	}

	c.ledger, err = buildLedgerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "ledger config")
	}

	if viper.GetBool("verbose") {
		logging.SetLevel(logrus.DebugLevel)
		logging.Entry().WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	population *Population
	ledger     *Ledger
}

func (c *Config) Population() *Population {
	return c.population
}

func (c *Config) Ledger() *Ledger {
	return c.ledger
}
