package keys

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ks, _, err := openKeyring()
			if err != nil {
				return err
			}

			keystores, err := ks.List(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "failed to list keystore")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
			//nolint:forbidigo // the table is the command's output
			fmt.Fprintln(w, "ADDRESS\tTYPE\tFILE")
			for _, k := range keystores {
				//nolint:forbidigo // the table is the command's output
				fmt.Fprintf(w, "%s\t%s\t%s\n", k.Address, k.KeyType, k.Path)
			}

			return errors.Wrap(w.Flush(), "failed to write key list")
		},
	}
}
