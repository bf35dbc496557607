package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "bstable"

// applyEnvironment sets all flags of command that were not passed
// on the command line from the environment variables
// BSTABLE_<COMMAND>_<FLAG> or from the config file
// passed with the --config flag.
func applyEnvironment(command *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(fmt.Sprintf("%s_%s", envPrefix, command.Name()))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile, _ := command.Flags().GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	var errs []string
	command.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		val := v.Get(f.Name)
		if slice, ok := val.([]any); ok {
			strs := make([]string, len(slice))
			for i, elem := range slice {
				strs[i] = fmt.Sprint(elem)
			}
			val = strings.Join(strs, ",")
		}
		if err := command.Flags().Set(f.Name, fmt.Sprint(val)); err != nil {
			errs = append(errs, err.Error())
		}
	})
	if len(errs) > 0 {
		return fmt.Errorf("error mapping environment variables to command flags: %s", strings.Join(errs, "; "))
	}
	return nil
}
