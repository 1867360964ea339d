package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	tenant  string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finbooks-cli",
		Short: "FinBooks CLI tool",
		Long:  `A command line interface for interacting with the FinBooks API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FinBooks API")
	rootCmd.PersistentFlags().StringVar(&tenant, "tenant", "", "Tenant identifier sent as X-Tenant-ID")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(closeCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(ratesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func closeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Period close operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status <close-id>",
		Short: "Show a period close and its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/closes/"+args[0], nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tasks <close-id>",
		Short: "List the checklist tasks of a period close",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/closes/"+args[0]+"/tasks", nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run <close-id>",
		Short: "Execute the automated tasks of a period close",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodPost, "/api/v1/closes/"+args[0]+"/tasks/run", nil)
		},
	})

	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-code>",
		Short: "Show the balance of a chart account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/balance", nil)
		},
	}
}

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Exchange rate operations",
	}

	var currencies []string
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync exchange rates from the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"currencies": currencies}
			payload, err := json.Marshal(body)
			if err != nil {
				return err
			}
			return doRequest(http.MethodPost, "/api/v1/rates/sync", payload)
		},
	}
	syncCmd.Flags().StringSliceVar(&currencies, "currencies", []string{"USD", "EUR"}, "Currencies to sync against the base currency")

	cmd.AddCommand(syncCmd)

	return cmd
}

func doRequest(method, path string, payload []byte) error {
	client := &http.Client{Timeout: timeout}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		fmt.Println(string(respBody))
		return nil
	}

	printJSON(result)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
