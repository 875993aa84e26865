// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the Viper-unmarshalable shape of Options, mirroring how
// device.Options was loaded in this module's predecessor. Durations are
// strings in configuration files (e.g. "30s") and converted on load.
type Config struct {
	CommandTimeout time.Duration `mapstructure:"commandTimeout"`
	WorkerCount    int           `mapstructure:"workerCount"`
}

// NewOptions unmarshals a Config from the given Viper subkey and combines it
// with a logger to produce Options. A nil *viper.Viper yields defaults.
func NewOptions(logger *zap.Logger, v *viper.Viper) (Options, error) {
	var cfg Config
	if v != nil {
		if err := v.Unmarshal(&cfg); err != nil {
			return Options{}, err
		}
	}

	return Options{
		Logger:         logger,
		CommandTimeout: cfg.CommandTimeout,
		WorkerCount:    cfg.WorkerCount,
	}, nil
}
