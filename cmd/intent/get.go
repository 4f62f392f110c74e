package intent

import (
	"github.com/spf13/cobra"
)

func newGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <intent-id>",
		Short: "Prints a payment intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			res, err := c.GetIntent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd, res)
		},
	}
}

func newList() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists payment intents, optionally filtered by vendor and status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			vendor, _ := cmd.Flags().GetString(vendorFlag)
			status, _ := cmd.Flags().GetString("status")

			c, err := newClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			res, err := c.ListIntents(cmd.Context(), vendor, status)
			if err != nil {
				return err
			}

			return printJSON(cmd, res)
		},
	}

	cmd.Flags().String(vendorFlag, "", "Only intents of this vendor")
	cmd.Flags().String("status", "", "Only intents in this status")

	return cmd
}
