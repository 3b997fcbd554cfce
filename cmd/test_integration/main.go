package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

type row struct {
	Key    string `json:"key"`
	Result string `json:"result"`
}

type sessionView struct {
	Buckets map[string][]row `json:"buckets"`
}

func main() {
	baseURL := os.Getenv("KGV_SERVER_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Classify a sentence
	fmt.Println("1. Checking text...")
	var view sessionView
	status, ok := sendRequest(baseURL, "POST", "/check/text", map[string]string{
		"text":             "Paris is the capital of France.",
		"extraction_scope": "all",
	}, &view)
	if !ok || status != http.StatusOK {
		fmt.Println("FAILED: Check text")
		os.Exit(1)
	}
	for outcome, rows := range view.Buckets {
		fmt.Printf("   %s: %d triple(s)\n", outcome, len(rows))
	}
	fmt.Println("PASSED: Check text")

	unknown := view.Buckets["none"]
	if len(unknown) == 0 {
		fmt.Println("SKIPPED: Add (no unknown triples, the graph already knows this sentence)")
		return
	}

	// 2. Add the first unknown triple
	key := unknown[0].Key
	fmt.Printf("2. Adding %s...\n", key)
	status, ok = sendRequest(baseURL, "POST", "/rows/"+key+"/add", nil, nil)
	switch {
	case ok && status == http.StatusOK:
		fmt.Println("PASSED: Add")
	case status == http.StatusConflict:
		fmt.Println("PASSED: Add (graph reported conflicts, escalation offered)")
		return
	default:
		fmt.Println("FAILED: Add")
		os.Exit(1)
	}

	// 3. The row left its bucket
	fmt.Println("3. Checking session...")
	var after sessionView
	if _, ok := sendRequest(baseURL, "GET", "/session", nil, &after); !ok {
		fmt.Println("FAILED: Session")
		os.Exit(1)
	}
	for _, r := range after.Buckets["none"] {
		if r.Key == key {
			fmt.Println("FAILED: row still in the unknown bucket")
			os.Exit(1)
		}
	}
	fmt.Println("PASSED: Session")
}

// sendRequest returns the status and whether it was a 2xx. out, when set,
// receives the decoded body.
func sendRequest(baseURL, method, endpoint string, payload, out interface{}) (int, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return 0, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return 0, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return resp.StatusCode, false
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return resp.StatusCode, false
		}
	}
	return resp.StatusCode, true
}
