// genctl submits a generation request against a running studio server and
// waits for the media URL, polling the status endpoint until the job
// reaches a terminal state.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studio/internal/poll"
)

func main() {
	var (
		baseURL  = flag.String("base", "http://localhost:8080", "studio server base URL")
		modelID  = flag.String("model", "fal-ai/flux/dev", "model identifier")
		promptIn = flag.String("prompt", "", "generation prompt")
		imageURL = flag.String("image", "", "input image URL for image-to-video models")
		interval = flag.Duration("interval", 3*time.Second, "poll interval")
		attempts = flag.Int("attempts", 100, "max poll attempts")
	)
	flag.Parse()

	if *promptIn == "" {
		fmt.Fprintln(os.Stderr, "genctl: -prompt is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mediaURL, err := run(ctx, *baseURL, *modelID, *promptIn, *imageURL, *interval, *attempts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "genctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(mediaURL)
}

func run(ctx context.Context, baseURL, modelID, promptText, imageURL string, interval time.Duration, attempts int) (string, error) {
	params := map[string]any{}
	if imageURL != "" {
		params["image_url"] = imageURL
	}
	body, _ := json.Marshal(map[string]any{
		"modelId": modelID,
		"prompt":  promptText,
		"params":  params,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	start, err := decodeBody(resp)
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}

	if mediaURL, _ := start["media_url"].(string); mediaURL != "" {
		return mediaURL, nil
	}
	requestID, _ := start["request_id"].(string)
	if requestID == "" {
		detail, _ := start["error"].(string)
		return "", fmt.Errorf("submit failed: %s", detail)
	}
	fmt.Fprintf(os.Stderr, "queued as %s, polling...\n", requestID)

	statusURL := fmt.Sprintf("%s/api/generate/status?request_id=%s&model_id=%s",
		baseURL, url.QueryEscape(requestID), url.QueryEscape(modelID))

	var mediaURL string
	poller := poll.Poller{Interval: interval, MaxAttempts: attempts}
	err = poller.Wait(ctx, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return true, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			// Transient; keep polling.
			return false, nil
		}
		status, err := decodeBody(resp)
		if err != nil {
			return false, nil
		}
		if u, _ := status["media_url"].(string); u != "" {
			mediaURL = u
			return true, nil
		}
		if s, _ := status["status"].(string); s == "FAILED" {
			if detail, _ := status["details"].(string); detail != "" {
				return true, fmt.Errorf("job failed: %s", detail)
			}
			// Soft failure from the status endpoint; the job may still run.
			return false, nil
		}
		return false, nil
	})
	if err != nil {
		return "", err
	}
	return mediaURL, nil
}

func decodeBody(resp *http.Response) (map[string]any, error) {
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return payload, nil
}
