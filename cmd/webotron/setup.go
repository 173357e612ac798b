package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSetupBucketCmd())
}

func newSetupBucketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup-bucket <bucket>",
		Short: "Create and configure an S3 bucket for website hosting",
		Long: "Create the bucket if needed, attach a public-read policy and " +
			"enable static-website hosting with index.html/error.html documents.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			name := args[0]

			m, err := newManager(cmd.Context())
			if err != nil {
				return err
			}

			if err := m.InitBucket(cmd.Context(), name); err != nil {
				return err
			}
			if err := m.SetPolicy(cmd.Context(), name); err != nil {
				return err
			}
			if err := m.ConfigureWebsite(cmd.Context(), name); err != nil {
				return err
			}

			url, err := m.WebsiteURL(cmd.Context(), name)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", green.Render("bucket ready:"), cyan.Render(url))
			return nil
		},
	}
}
