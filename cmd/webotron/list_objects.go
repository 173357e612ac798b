package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newListObjectsCmd())
}

func newListObjectsCmd() *cobra.Command {
	var asJSON bool
	var long bool

	cmd := &cobra.Command{
		Use:   "list-bucket-objects <bucket>",
		Short: "List all objects in an S3 bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			m, err := newManager(cmd.Context())
			if err != nil {
				return err
			}

			objects, err := m.ListObjects(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(objects)
			}
			for _, obj := range objects {
				if long {
					fmt.Printf("%10s  %s  %s  %s\n",
						humanize.Bytes(uint64(obj.Size)),
						gray.Render(obj.LastModified.UTC().Format(time.RFC3339)),
						gray.Render(obj.ETag),
						obj.Key,
					)
					continue
				}
				fmt.Println(obj.Key)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show size, modification time and ETag")
	return cmd
}
