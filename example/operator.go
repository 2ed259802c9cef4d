package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// demoReasons cycles through plausible reasons a watched process reports.
var demoReasons = []string{
	"nightly backup finished",
	"queue drained",
	"cert renewal ok",
	"replication lag 0s",
}

// StartDemoOperator simulates the watched process: it POSTs a liveness
// ping to the canary at the given interval until the process exits.
// Call this in a goroutine before starting the canary.
func StartDemoOperator(url, token string, interval time.Duration) {
	client := &http.Client{Timeout: 5 * time.Second}

	// give the canary a moment to come up before the first ping
	time.Sleep(500 * time.Millisecond)

	for i := 0; ; i++ {
		reason := demoReasons[i%len(demoReasons)]

		req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(reason))
		if err != nil {
			slog.Error("operator: build request", "error", err)
			return
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

		resp, err := client.Do(req)
		if err != nil {
			slog.Warn("operator: ping failed", "error", err)
		} else {
			resp.Body.Close()
			slog.Info("operator: pinged", "reason", reason, "status", resp.StatusCode)
		}

		time.Sleep(interval)
	}
}
