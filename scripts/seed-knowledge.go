package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type KnowledgeFile struct {
	Dealership string  `json:"dealership"`
	Entries    []Entry `json:"entries"`
}

type Entry struct {
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type KnowledgeRequest struct {
	Entries []Entry `json:"entries"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/seed-knowledge.go <knowledge-file.json>")
		fmt.Println("Example: go run scripts/seed-knowledge.go testdata/sample-dealership-knowledge.json")
		os.Exit(1)
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	knowledgeFile := os.Args[1]

	fmt.Printf("Seeding knowledge base\n")
	fmt.Printf("======================\n")
	fmt.Printf("API URL: %s\n", apiURL)
	fmt.Printf("Knowledge file: %s\n\n", knowledgeFile)

	data, err := os.ReadFile(knowledgeFile)
	if err != nil {
		fmt.Printf("error reading file: %v\n", err)
		os.Exit(1)
	}

	var file KnowledgeFile
	if err := json.Unmarshal(data, &file); err != nil {
		fmt.Printf("error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Dealership: %s\n", file.Dealership)
	fmt.Printf("Entries to upload: %d\n\n", len(file.Entries))

	// Batches of 20 keep each embedding request inside provider limits.
	const batchSize = 20
	totalBatches := (len(file.Entries) + batchSize - 1) / batchSize

	ctx := context.Background()
	client := &http.Client{Timeout: 60 * time.Second}
	token := strings.TrimSpace(os.Getenv("KNOWLEDGE_TOKEN"))

	failures := 0
	for i := 0; i < len(file.Entries); i += batchSize {
		end := i + batchSize
		if end > len(file.Entries) {
			end = len(file.Entries)
		}

		batch := file.Entries[i:end]
		batchNum := (i / batchSize) + 1
		fmt.Printf("Batch %d/%d: uploading %d entries...\n", batchNum, totalBatches, len(batch))

		payload, err := json.Marshal(KnowledgeRequest{Entries: batch})
		if err != nil {
			fmt.Printf("   error marshaling request: %v\n", err)
			failures++
			continue
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/knowledge", bytes.NewReader(payload))
		if err != nil {
			fmt.Printf("   error creating request: %v\n", err)
			failures++
			continue
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if token != "" {
			httpReq.Header.Set("X-Knowledge-Token", token)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			fmt.Printf("   error sending request: %v\n", err)
			failures++
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode >= 300 {
			fmt.Printf("   upload failed (%d): %s\n", resp.StatusCode, strings.TrimSpace(string(body)))
			failures++
			continue
		}
		fmt.Printf("   done\n")
	}

	if failures > 0 {
		fmt.Printf("\nfinished with %d failed batch(es)\n", failures)
		os.Exit(1)
	}
	fmt.Println("\nall entries uploaded")
}
