//go:build ignore

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kashguard/go-payment-intents/internal/api/middleware"
)

// Prints the X-Webhook-Signature header for a payment event body read from
// stdin, e.g.
//
//	echo -n '{"event":"payment.completed","data":{"intentId":"x"}}' | WEBHOOK_SECRET=s go run scripts/sign_webhook.go
func main() {
	secret := flag.String("secret", os.Getenv("WEBHOOK_SECRET"), "Webhook secret, defaults to $WEBHOOK_SECRET")
	flag.Parse()

	if *secret == "" {
		log.Fatal("no webhook secret given")
	}

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("failed to read body: %v", err)
	}

	fmt.Printf("%s: sha256=%s\n", middleware.HeaderWebhookSignature, middleware.SignWebhookBody(*secret, body))
}
