// Command mc-emit posts an activity event to a mission-control server. The
// payload comes from an inline JSON string, a JSON file, piped stdin, or the
// discrete field flags, in that order of precedence.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const requestTimeout = 15 * time.Second

func main() {
	var (
		server       = flag.String("server", "http://localhost:8080", "mission-control base URL")
		jsonInline   = flag.String("json", "", "event as an inline JSON object")
		jsonFile     = flag.String("json-file", "", "path to a JSON file holding the event")
		summary      = flag.String("summary", "", "event summary")
		source       = flag.String("source", "", "event source")
		kind         = flag.String("kind", "", "event kind")
		status       = flag.String("status", "", "event status")
		details      = flag.String("details", "", "event details as a JSON value")
		relatedPaths = flag.String("related-paths", "", "comma-separated related file paths")
		relatedURLs  = flag.String("related-urls", "", "comma-separated related URLs")
		externalID   = flag.String("external-id", "", "external id for deduplication")
	)
	flag.Parse()

	payload, err := buildPayload(*jsonInline, *jsonFile, *summary, *source, *kind, *status, *details, *relatedPaths, *relatedURLs, *externalID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mc-emit:", err)
		os.Exit(1)
	}

	outcome, err := post(strings.TrimRight(*server, "/")+"/api/v1/activity", payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mc-emit:", err)
		os.Exit(1)
	}

	if outcome.Deduplicated {
		fmt.Printf("deduplicated %s\n", outcome.ID)
	} else {
		fmt.Printf("created %s\n", outcome.ID)
	}
	if outcome.AlertError != "" {
		fmt.Fprintln(os.Stderr, "mc-emit: alert enqueue failed:", outcome.AlertError)
	}
	if outcome.IndexError != "" {
		fmt.Fprintln(os.Stderr, "mc-emit: search indexing failed:", outcome.IndexError)
	}
}

type ingestOutcome struct {
	ID           string `json:"id"`
	Deduplicated bool   `json:"deduplicated"`
	AlertID      string `json:"alertId"`
	AlertError   string `json:"alertError"`
	IndexError   string `json:"indexError"`
}

// buildPayload resolves the event body. An explicit JSON source wins over the
// field flags; piped stdin is used when no other source is given.
func buildPayload(inline, file, summary, source, kind, status, details, relatedPaths, relatedURLs, externalID string) ([]byte, error) {
	if inline != "" {
		return validateJSON([]byte(inline))
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return validateJSON(data)
	}
	if piped() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(bytes.TrimSpace(data)) > 0 {
			return validateJSON(data)
		}
	}

	event := map[string]any{}
	if summary != "" {
		event["summary"] = summary
	}
	if source != "" {
		event["source"] = source
	}
	if kind != "" {
		event["kind"] = kind
	}
	if status != "" {
		event["status"] = status
	}
	if details != "" {
		var parsed any
		if err := json.Unmarshal([]byte(details), &parsed); err != nil {
			return nil, fmt.Errorf("invalid -details JSON: %w", err)
		}
		event["details"] = parsed
	}
	if relatedPaths != "" {
		event["relatedPaths"] = splitList(relatedPaths)
	}
	if relatedURLs != "" {
		event["relatedUrls"] = splitList(relatedURLs)
	}
	if externalID != "" {
		event["externalId"] = externalID
	}
	return json.Marshal(event)
}

func validateJSON(data []byte) ([]byte, error) {
	var event map[string]any
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("invalid event JSON: %w", err)
	}
	return json.Marshal(event)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func piped() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}

func post(url string, payload []byte) (*ingestOutcome, error) {
	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("server answered %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var outcome ingestOutcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &outcome, nil
}
