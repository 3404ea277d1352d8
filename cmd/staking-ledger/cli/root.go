package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/staking-ledger/pkg"
)

const (
	defaultConfigFileName = "config.yml"
	// configPathEnv overrides the default of the --config flag.
	configPathEnv = "STAKING_LEDGER_CONFIG"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:           "staking-ledger",
		Short:         "Token staking pool with weekly compounded rewards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := getDefaultConfigPath(homePath)

	rootCmd.AddCommand(StartServerCmd())
	rootCmd.AddCommand(DumpStateCmd())
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))

	return rootCmd.Execute()
}

// getDefaultConfigPath prefers STAKING_LEDGER_CONFIG over the file in homePath.
func getDefaultConfigPath(homePath string) string {
	return pkg.Getenv(configPathEnv, filepath.Join(homePath, defaultConfigFileName))
}

func GetConfigPath() string {
	return cfgPath
}
