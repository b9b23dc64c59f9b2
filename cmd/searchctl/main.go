package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/client"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/editor"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/preview"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/shell"
)

type options struct {
	url          string
	token        string
	uid          string
	timeout      time.Duration
	previewDelay time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "searchctl",
		Short: "Interactive editor for advanced document searches",
		Long: `Interactive editor for advanced document searches.

Build a nested condition tree line by line, watch the live match count
and run the search against a document search API.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), o)
		},
	}
	cmd.AddCommand(newFieldsCommand(o))

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.url, "url", "http://localhost:8080/api", "base URL of the search API")
	flags.StringVar(&o.token, "token", os.Getenv("SEARCH_TOKEN"), "bearer token")
	flags.StringVar(&o.uid, "uid", "", "user id sent in the uid header when the server runs without auth")
	flags.DurationVar(&o.timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().DurationVar(&o.previewDelay, "preview-delay", preview.DefaultDelay, "quiet period before a live count runs")
	return cmd
}

func (o *options) client() *client.Client {
	return client.NewClient(client.ClientConfig{BaseURL: o.url, Token: o.token, UID: o.uid, Timeout: o.timeout})
}

func runShell(ctx context.Context, o *options) error {
	c := o.client()
	session := editor.NewSession(
		editor.WithSearchPort(c),
		editor.WithPreview(c, preview.WithDelay(o.previewDelay)),
	)
	defer session.Close()

	fmt.Println("Type help for commands.")
	return shell.New(session, os.Stdout).Run(ctx, "search> ")
}

func newFieldsCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the searchable fields and their operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := o.client().Fields(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog %s\n", resp.Version)
			for _, f := range resp.Fields {
				fmt.Fprintf(out, "%-12s %-9s %v\n", f.Name, f.Class, f.ValidOperators)
			}
			return nil
		},
	}
}
