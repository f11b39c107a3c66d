package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverAddr string
	apiKey     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Send an OCR text dump to a running cardwatch server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		url := serverAddr + "/ingest"
		client := &http.Client{Timeout: 10 * time.Second}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "text/plain")
		if apiKey != "" {
			req.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("ingest request failed: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
		}

		logger.Info("ingested", "file", args[0], "server", serverAddr)
		fmt.Println(string(body))
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&serverAddr, "addr", "http://localhost:3000", "Server address")
	ingestCmd.Flags().StringVar(&apiKey, "key", "", "API key for protected endpoints")
}
