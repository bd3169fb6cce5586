// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package config loads process-level configuration for the serviceconfig
// CLI from files and environment variables.
package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates configuration for the CLI process. This is the tool's
// own configuration, distinct from the service configurations it resolves.
type Config struct {
	Service  string         `mapstructure:"service"`
	Defaults map[string]any `mapstructure:"defaults"`
	Store    StoreConfig    `mapstructure:"store"`
}

// StoreConfig selects and parameterizes the config store backend.
type StoreConfig struct {
	File string `mapstructure:"file"`
}

// Load reads configuration from files and environment variables.
// Environment variables use the prefix "SERVICECONFIG" and the dot character
// in keys is replaced by an underscore. For example, "store.file" becomes
// "SERVICECONFIG_STORE_FILE".
func Load() (*Config, error) {
	cfg := &Config{}

	v := viper.New()
	v.SetConfigName("serviceconfig")
	v.AddConfigPath(".")
	v.SetEnvPrefix("SERVICECONFIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
