package intent

import (
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/kashguard/go-payment-intents/internal/types/webhooks"
	"github.com/spf13/cobra"
)

func newStart() *cobra.Command {
	return &cobra.Command{
		Use:   "start <intent-id>",
		Short: "Starts the payer side grant request of an intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			res, err := c.StartIntent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd, res)
		},
	}
}

func newContinue() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "continue <intent-id>",
		Short: "Reports the payer's grant decision for an intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grant, _ := cmd.Flags().GetString("grant")
			paymentID, _ := cmd.Flags().GetString("payment-id")

			c, err := newClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			res, err := c.ContinueIntent(cmd.Context(), args[0], &intents.PostContinueIntentPayload{
				PaymentID: paymentID,
				Grant:     grant,
			})
			if err != nil {
				return err
			}

			return printJSON(cmd, res)
		},
	}

	cmd.Flags().String("grant", "authorized", "Grant outcome, e.g. authorized or rejected")
	cmd.Flags().String("payment-id", "", "Payment id returned by start")

	return cmd
}

func newEvent() *cobra.Command {
	return &cobra.Command{
		Use:   "event <event-type> <intent-id>",
		Short: "Delivers a provider webhook event for an intent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			res, err := c.PostEvent(cmd.Context(), &webhooks.PostPaymentEventPayload{
				Event: args[0],
				Data:  map[string]interface{}{"intentId": args[1]},
			})
			if err != nil {
				return err
			}

			return printJSON(cmd, res)
		},
	}
}
