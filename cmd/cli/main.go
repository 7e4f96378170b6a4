package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rootOptions are flags shared by every command.
type rootOptions struct {
	baseURL string
	timeout time.Duration
	caller  string
	token   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "nftlend-cli",
		Short:         "NFT lending registry CLI tool",
		Long:          `A command line interface for interacting with the NFT lending registry API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("NFTLEND_URL", "http://localhost:8080"), "Base URL of the registry API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.caller, "caller", os.Getenv("NFTLEND_CALLER"), "Caller address sent as X-Caller-Address")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("NFTLEND_TOKEN"), "Bearer token, used instead of --caller when set")

	rootCmd.AddCommand(loanCmd(opts))
	rootCmd.AddCommand(protocolCmd(opts))

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
