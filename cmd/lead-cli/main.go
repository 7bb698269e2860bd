// cmd/lead-cli prompts an operator for a lead taken over the phone and submits
// it to a running lead API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	httpclient "lead-intake/internal/common/http"
)

func main() {
	apiURL := flag.String("url", envOr("LEAD_API_URL", "http://localhost:8080"), "base URL of the lead API")
	source := flag.String("source", "phone", "source recorded on the lead")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	a, err := ask()
	if errors.Is(err, errAborted) {
		fmt.Fprintln(os.Stderr, "Cancelled.")
		os.Exit(130)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := httpclient.NewClient("lead-api", *apiURL, *timeout)
	resp, err := submit(ctx, client, a.payload(*source))
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			printRejected(os.Stderr, rejected)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	printResult(os.Stdout, resp)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
