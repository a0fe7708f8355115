// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Thermoquad/crcengine/internal/config"
	"github.com/Thermoquad/crcengine/internal/log"
	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes every environment variable read by the CLI
const envPrefix = "CRCENGINE"

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Logging and model definition flags
	logLevel   string
	logOutput  string
	modelsFile string
)

var rootCmd = &cobra.Command{
	Use:   "crcengine",
	Short: "Generic bit-serial CRC calculator",
	Long: `crcengine - Compute, trace and verify cyclic redundancy checks of any width
from 8 to 64 bits with arbitrary polynomial, initial value, final XOR and
reflection settings.

Named algorithms come from the built-in catalog (see "crcengine list") and can
be extended with a YAML model file passed via --models.

Framed payloads protected by any catalog CRC can be sent and monitored over a
serial port or WebSocket connection:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Every persistent flag can also be set through an environment variable named
CRCENGINE_<FLAG>, for example CRCENGINE_LOG_LEVEL=debug. For WebSocket
authentication, the password is read from CRCENGINE_PASSWORD, or prompted
interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "stderr", "Log output (stdout, stderr or a file path)")
	rootCmd.PersistentFlags().StringVarP(&modelsFile, "models", "m", "", "YAML file with additional CRC models")
}

// initConfig merges environment variables into the persistent flags, sets up
// logging and registers custom models
func initConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	portName = v.GetString("port")
	baudRate = v.GetInt("baud")
	wsURL = v.GetString("url")
	wsUsername = v.GetString("username")
	wsNoSSLVerify = v.GetBool("no-ssl-verify")
	logLevel = v.GetString("log-level")
	logOutput = v.GetString("log-output")
	modelsFile = v.GetString("models")

	if err := log.Init(logLevel, logOutput); err != nil {
		return err
	}

	if modelsFile == "" {
		return nil
	}
	return loadModels(modelsFile, crc.Default)
}

// loadModels registers every model in a YAML file with the catalog
func loadModels(path string, catalog *crc.Catalog) error {
	f, err := config.Load(path)
	if err != nil {
		return err
	}
	models, err := f.Register(catalog)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Infow("custom models loaded", "file", path, "count", len(models))
	return nil
}

// ExecuteContext runs the root command, cancelling long-running commands
// when ctx is done
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
