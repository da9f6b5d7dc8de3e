package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/granfondo/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                          ___                 __
   ___ ________ ____  ___/ _/__  ___  ___/ /__
  / _ '/ __/ _ '/ _ \/ _/ _/ _ \/ _ \/ _  / _ \
  \_, /_/  \_,_/_//_/_//_/ \___/_//_/\_,_/\___/
 /___/
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "granfondo",
	Short: "Collects granfondo race results from Korean timing providers.",
	Long: LOGO + `granfondo walks a range of bib numbers for an event, asks the event's timing
provider (SPCT, SmartChip or Marazone) for each rider's result, and saves the
finishers, DNFs and DNSs to a CSV or JSON file as it goes.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelString, _ := cmd.Flags().GetString("loglevel")
		return utils.SetLogLevel(levelString)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.granfondo.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

	viper.BindPFlag("proxy", rootCmd.PersistentFlags().Lookup("proxy"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("timeout", 30)
	viper.SetDefault("format", "json")
	viper.SetDefault("period", 0)
	viper.SetDefault("fixup.marker", "코스제외자")
	viper.SetDefault("fixup.division", "그란폰도")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".granfondo")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("granfondo")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".granfondo.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Debugf("Could not create config file: %v", err)
			}
		} else if cfgFile != "" && !os.IsNotExist(err) {
			utils.Log.Warnf("Could not read config %s: %v", cfgFile, err)
		}
	}
}
