// Command vango-engine renders application modules on the server: one URL
// at a time, a prerender manifest into a snapshot store, or continuously
// behind an HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/engine/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌─┐┌┐┌┌─┐┌─┐  ┌─┐┌┐┌┌─┐┬┌┐┌┌─┐
  ╚╗╔╝├─┤││││ ┬│ │  ├┤ ││││ ┬││││├┤
   ╚╝ ┴ ┴┘└┘└─┘└─┘  └─┘┘└┘└─┘┴┘└┘└─┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	env := &cli{}

	rootCmd := &cobra.Command{
		Use:   "vango-engine",
		Short: "Server-side render engine for Vango applications",
		Long: `vango-engine renders Vango application modules to HTML on the server.

Every render bootstraps the application on a fresh platform, waits
until all tracked work has settled, runs the before-serialize hooks,
serializes the document and tears the platform down.

Configuration is read from engine.yaml (or --config), overlaid with
VANGO_ENGINE_* environment variables and .env files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return env.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&env.configPath, "config", "c", "", "Path to the configuration file (default ./engine.yaml when present)")
	flags.StringSliceVar(&env.envFiles, "env-file", []string{".env"}, "Environment files to load")
	flags.StringVar(&env.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&env.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		renderCmd(env),
		prerenderCmd(env),
		serveCmd(env),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
