package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/webotron/webotron/internal/bucket"
	"github.com/webotron/webotron/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:     "webotron",
	Short:   "Webotron deploys static websites to AWS S3",
	Version: version.Detailed(),
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	}
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", "", "Webotron config file")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS credential profile")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region override")
	rootCmd.PersistentFlags().String("endpoint", "", "Custom S3 endpoint (MinIO and friends)")
	rootCmd.PersistentFlags().Bool("path-style", false, "Force path-style bucket addressing")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func main() {
	// pick up AWS_* and WEBOTRON_* vars from a local .env if present
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".webotron"))
		viper.AddConfigPath(filepath.Join(home, ".config/webotron"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("yaml")
	}

	// a missing config file is fine, everything has flag or env fallbacks
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	flags := rootCmd.PersistentFlags()
	viper.BindPFlag("profile", flags.Lookup("profile"))
	viper.BindPFlag("region", flags.Lookup("region"))
	viper.BindPFlag("endpoint", flags.Lookup("endpoint"))
	viper.BindPFlag("path_style", flags.Lookup("path-style"))
	viper.BindPFlag("debug", flags.Lookup("debug"))

	viper.SetEnvPrefix("WEBOTRON")
	viper.AutomaticEnv()

	if viper.GetBool("debug") {
		logLevel.Set(slog.LevelDebug)
	}

	return nil
}

// newManager builds the bucket Manager from the resolved configuration.
// access_key and secret_key have no flags, they come from the config file or
// WEBOTRON_ACCESS_KEY / WEBOTRON_SECRET_KEY.
func newManager(ctx context.Context) (*bucket.Manager, error) {
	return bucket.New(ctx, &bucket.Config{
		Profile:   viper.GetString("profile"),
		Region:    viper.GetString("region"),
		Endpoint:  viper.GetString("endpoint"),
		AccessKey: viper.GetString("access_key"),
		SecretKey: viper.GetString("secret_key"),
		PathStyle: viper.GetBool("path_style"),
	})
}
