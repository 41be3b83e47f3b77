// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileFlagName is the name of the command line flag that names an explicit configuration file
	FileFlagName      = "file"
	FileFlagShorthand = "f"
)

// NewViper produces a Viper instance configured with the standard conventions.
// The applicationName is used as the configuration file name, the environment prefix,
// and to generate the path under /etc and $HOME to look for configuration files.
// Automatic environment mode is turned on.
func NewViper(applicationName string) *viper.Viper {
	viper := viper.New()
	viper.SetConfigName(applicationName)
	viper.AddConfigPath(fmt.Sprintf("/etc/%s", applicationName))
	viper.AddConfigPath(fmt.Sprintf("$HOME/.%s", applicationName))
	viper.AddConfigPath(".")

	viper.SetEnvPrefix(applicationName)
	viper.AutomaticEnv()

	return viper
}

// NewFlagSet produces the standard command line flags for applicationName
func NewFlagSet(applicationName string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	fs.StringP(FileFlagName, FileFlagShorthand, "", "the configuration file to use.  Overrides the search path.")
	return fs
}

// ParseAndBind parses the given flag set using the supplied arguments and then binds
// the flag set to the specified Viper instance.  If arguments is nil, os.Args[1:] is used instead.
func ParseAndBind(viper *viper.Viper, flagSet *pflag.FlagSet, arguments []string) error {
	if arguments == nil {
		arguments = os.Args[1:]
	}

	if err := flagSet.Parse(arguments); err != nil {
		return err
	}

	return viper.BindPFlags(flagSet)
}

// ReadInConfig reads the configuration file.  An explicit file named by FileFlagName takes
// precedence over the search path.  A missing file on the search path is not an error, so
// that an application can run from defaults and the environment alone.
func ReadInConfig(v *viper.Viper) error {
	if file := v.GetString(FileFlagName); len(file) > 0 {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}

	return err
}

// DecodeHook is the mapstructure hook used when unmarshaling configuration.  It accepts
// durations as strings and slices as comma-separated strings.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// UnmarshalKey unmarshals the given key into target using DecodeHook.  A missing key
// leaves target untouched.
func UnmarshalKey(v *viper.Viper, key string, target interface{}) error {
	if !v.IsSet(key) {
		return nil
	}

	if err := v.UnmarshalKey(key, target, viper.DecodeHook(DecodeHook())); err != nil {
		return fmt.Errorf("unable to unmarshal %s: %w", key, err)
	}

	return nil
}
