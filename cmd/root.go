package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/josephlewis42/gosh/core"
	"github.com/josephlewis42/gosh/core/config"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("No configuration found, using defaults. Run `gosh init` to create one.")
		return config.Default(cfgPath), nil
	}

	return configuration, err
}

// rootCmd starts an interactive session when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gosh",
	Short: "A small interactive Unix shell.",
	Long: `gosh reads command lines, wires up pipes and redirections, and runs
programs as child processes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		appLog := logrus.New()
		if level, err := logrus.ParseLevel(configuration.LogLevel); err == nil {
			appLog.SetLevel(level)
		}
		if fd, err := configuration.OpenAppLog(); err == nil {
			appLog.SetOutput(fd)
			defer fd.Close()
		} else {
			log.Printf("Couldn't open app log: %v", err)
			appLog.SetOutput(io.Discard)
		}

		shell, err := core.NewShell(configuration, appLog)
		if err != nil {
			return err
		}
		defer shell.Close()

		return shell.Run()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
