package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/engine"
)

func renderCmd(env *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render [url]",
		Short: "Render a single URL",
		Long: `Render one URL of the application and print the document.

Examples:
  vango-engine render /
  vango-engine render /products/1 --out product.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := "/"
			if len(args) == 1 {
				url = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRender(ctx, env, url, out, cmd)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the document to a file instead of stdout")

	return cmd
}

func runRender(ctx context.Context, env *cli, url, out string, cmd *cobra.Command) error {
	f, err := env.factory()
	if err != nil {
		return err
	}
	sh, err := env.shell()
	if err != nil {
		return err
	}
	doc, err := sh.ForURL(url)
	if err != nil {
		return err
	}

	res, err := env.newEngine().RenderModuleFactory(ctx, f, engine.RenderOptions{
		Document:       doc,
		URL:            url,
		ExtraProviders: env.providers(),
	})
	if err != nil {
		return err
	}

	if out == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), res.HTML)
		return err
	}
	if err := os.WriteFile(out, []byte(res.HTML), 0o644); err != nil {
		return err
	}
	success("Rendered %s to %s (%d bytes)", url, out, len(res.HTML))
	return nil
}
