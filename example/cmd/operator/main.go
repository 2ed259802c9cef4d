// Standalone operator for testing the CLI.
//
// Usage:
//
//	OPERATOR_TOKEN=some-secret go run ./cmd/canary serve
//
// Then in another terminal:
//
//	OPERATOR_TOKEN=some-secret go run ./example/cmd/operator
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	token := os.Getenv("OPERATOR_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "OPERATOR_TOKEN must be set")
		os.Exit(1)
	}

	url := os.Getenv("CANARY_URL")
	if url == "" {
		url = "http://127.0.0.1:3000/"
	}

	fmt.Printf("Pinging %s every 10 seconds\n", url)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	client := &http.Client{Timeout: 5 * time.Second}

	for i := 0; ; i++ {
		reason := fmt.Sprintf("operator alive (ping %d)", i)

		req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(reason))
		if err != nil {
			fmt.Fprintf(os.Stderr, "build request: %v\n", err)
			os.Exit(1)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err != nil {
			fmt.Printf("ping failed: %v\n", err)
		} else {
			body := make([]byte, 32)
			n, _ := resp.Body.Read(body)
			resp.Body.Close()
			fmt.Printf("ping %d: %d %s\n", i, resp.StatusCode, strings.TrimSpace(string(body[:n])))
		}

		time.Sleep(10 * time.Second)
	}
}
