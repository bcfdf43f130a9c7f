// foxyclient is a CLI tool for sending signed test webhooks to a running
// webhook server.
//
// Usage:
//
//	foxyclient -url http://localhost:8080/v1/webhook/orderdesk \
//	    -event validation/payment -key SECRET -file cart.json
//
// The payload is read from -file, or from stdin when -file is omitted. The
// request is signed the same way Foxy signs deliveries, so signature
// verification on the server exercises the real code path.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"foxy-webhooks/internal/foxy"
)

func main() {
	var (
		url   = flag.String("url", "http://localhost:8080/v1/webhook/orderdesk", "webhook endpoint URL")
		event = flag.String("event", foxy.EventValidation, "webhook event type")
		key   = flag.String("key", os.Getenv("FOXY_WEBHOOK_ENCRYPTION_KEY"), "encryption key for signing")
		file  = flag.String("file", "", "payload file (default: stdin)")
	)
	flag.Parse()

	if err := run(*url, *event, *key, *file); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(url, event, key, file string) error {
	payload, err := readPayload(file)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Foxy-Webhook-Event", event)
	if key != "" {
		req.Header.Set("Foxy-Webhook-Signature", foxy.Sign(payload, key))
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n", resp.Status, body)
	return nil
}

func readPayload(file string) ([]byte, error) {
	if file == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}
