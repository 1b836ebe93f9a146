// Command banklink is a terminal client for the banklink gateway: the
// same login, account, feed and transfer flows the mobile app drives,
// usable from a shell.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "banklink",
	Short: "Terminal client for the banklink mobile gateway",
	Long: `banklink drives the mobile gateway from the terminal: log in,
list accounts, browse the grouped transaction feed and move funds
between your own accounts (with an explicit confirmation step).`,
	SilenceUsage: true,
}

func init() {
	viper.SetEnvPrefix("BANKLINK")
	viper.AutomaticEnv()
	viper.SetDefault("api_url", "http://localhost:8080")

	rootCmd.PersistentFlags().String("api-url", "", "gateway base URL (default $BANKLINK_API_URL or http://localhost:8080)")
	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))

	rootCmd.AddCommand(loginCmd, accountsCmd, feedCmd, transferCmd)
}

func apiURL() string {
	return strings.TrimRight(viper.GetString("api_url"), "/")
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".banklink", "token"), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("not logged in, run `banklink login` first")
	}
	return strings.TrimSpace(string(b)), nil
}

var httpClient = &http.Client{Timeout: 20 * time.Second}

// callAPI performs one gateway request. A non-nil out receives the decoded
// JSON body; error bodies are surfaced as-is.
func callAPI(method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, apiURL()+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("gateway returned %d", res.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
