package main

import "github.com/kashguard/go-payment-intents/cmd"

func main() {
	cmd.Execute()
}
