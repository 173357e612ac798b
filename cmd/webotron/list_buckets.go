package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newListBucketsCmd())
}

func newListBucketsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list-buckets",
		Short: "List all S3 buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			m, err := newManager(cmd.Context())
			if err != nil {
				return err
			}

			buckets, err := m.ListBuckets(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(buckets)
			}
			for _, b := range buckets {
				fmt.Printf("%s  %s\n", cyan.Render(b.Name), gray.Render(humanize.Time(b.CreatedAt)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
