/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/api"
	"github.com/ssargent/surfpatch/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the surfpatch REST API server. Requests are authenticated with the
X-API-Key header. When security.api_key is "auto" a key is generated for the
lifetime of the process and printed at startup.

Examples:
  surfpatch serve
  surfpatch serve --port=9000 --api-key=mysecretkey`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		apiKey := cfg.Security.APIKey
		if apiKey == "" || apiKey == config.AutoAPIKey {
			generated, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			apiKey = generated
			cmd.Printf("Generated API key: %s\n", apiKey)
		}

		p, err := getPatcher()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		serverConfig := api.ServerConfig{
			Port:           cfg.Port,
			Bind:           cfg.Bind,
			APIKey:         apiKey,
			RequestTimeout: cfg.RequestTimeout,
		}
		if err := starter.StartServer(ctx, p, serverConfig, container.GetLogger()); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
}
