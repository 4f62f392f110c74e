package intent

import (
	"encoding/json"

	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/types/intents"
	"github.com/spf13/cobra"
)

const (
	amountFlag      = "amount"
	descriptionFlag = "description"
	vendorFlag      = "vendor"
	currencyFlag    = "currency"
	cartIDFlag      = "cart-id"
)

func newCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Creates a payment intent and prints it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			amount, _ := flags.GetString(amountFlag)
			description, _ := flags.GetString(descriptionFlag)
			vendor, _ := flags.GetString(vendorFlag)
			currency, _ := flags.GetString(currencyFlag)
			cartID, _ := flags.GetString(cartIDFlag)

			payload := &intents.PostCreateIntentPayload{
				Amount:      json.Number(amount),
				Description: description,
				Vendor:      vendor,
				Currency:    currency,
				CartID:      cartID,
			}
			if err := payload.Validate(strfmt.Default); err != nil {
				return err
			}

			c, err := newClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			res, err := c.CreateIntent(cmd.Context(), payload)
			if err != nil {
				return err
			}

			return printJSON(cmd, res)
		},
	}

	cmd.Flags().String(amountFlag, "", "Amount in major units, e.g. 100.00")
	cmd.Flags().String(descriptionFlag, "", "Description shown to the payer")
	cmd.Flags().String(vendorFlag, "", "Vendor label")
	cmd.Flags().String(currencyFlag, "", "ISO currency code, defaults to the provider asset code")
	cmd.Flags().String(cartIDFlag, "", "Cart reference")
	_ = cmd.MarkFlagRequired(amountFlag)
	_ = cmd.MarkFlagRequired(descriptionFlag)

	return cmd
}
