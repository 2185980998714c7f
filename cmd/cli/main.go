package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"

	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/adapter/repository/snapshot"
	"github.com/iho/bankledger/internal/infrastructure/idgen"
	"github.com/iho/bankledger/internal/usecase"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cliConfig struct {
	baseURL   string
	timeout   time.Duration
	retries   int
	tokenFile string
}

// envelope mirrors the server's JSON response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	Account json.RawMessage `json:"account,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func newRootCmd() *cobra.Command {
	cfg := &cliConfig{}

	rootCmd := &cobra.Command{
		Use:          "bankctl",
		Short:        "Client for the bank ledger service",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.baseURL, "url", "http://localhost:5000", "Ledger service base URL")
	rootCmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().IntVar(&cfg.retries, "retries", 3, "Retries for failed requests")
	rootCmd.PersistentFlags().StringVar(&cfg.tokenFile, "token-file", defaultTokenFile(), "File holding the session token")

	rootCmd.AddCommand(
		registerCmd(cfg),
		loginCmd(cfg),
		whoamiCmd(cfg),
		accountCmd(cfg),
		ledgerCmd(),
	)
	return rootCmd
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bankctl-token"
	}
	return filepath.Join(home, ".bankctl", "token")
}

func registerCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"username": args[0], "password": args[1]}
			env, err := newClient(cfg).do(cmd.Context(), http.MethodPost, "/register", body, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), env.Message)
			return nil
		},
	}
}

func loginCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and store the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"username": args[0], "password": args[1]}
			env, err := newClient(cfg).do(cmd.Context(), http.MethodPost, "/login", body, false)
			if err != nil {
				return err
			}
			if err := saveToken(cfg.tokenFile, env.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (token saved to %s)\n", env.Message, cfg.tokenFile)
			return nil
		},
	}
}

func whoamiCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newClient(cfg).do(cmd.Context(), http.MethodGet, "/protected", nil, true)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), env.Message)
			return nil
		},
	}
}

func accountCmd(cfg *cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}

	var initialBalance string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]string{"initial_balance": initialBalance}
			return printResult(cmd, cfg, http.MethodPost, "/accounts/create", body)
		},
	}
	create.Flags().StringVar(&initialBalance, "initial-balance", "0", "Opening balance")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your active account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printResult(cmd, cfg, http.MethodGet, "/accounts/my-account", nil)
		},
	}

	deposit := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit funds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"amount": args[0]}
			return printResult(cmd, cfg, http.MethodPost, "/accounts/deposit", body)
		},
	}

	withdraw := &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraw funds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"amount": args[0]}
			return printResult(cmd, cfg, http.MethodPost, "/accounts/withdraw", body)
		},
	}

	transfer := &cobra.Command{
		Use:   "transfer <to-account> <amount>",
		Short: "Transfer funds to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"to_account_number": args[0], "amount": args[1]}
			return printResult(cmd, cfg, http.MethodPost, "/accounts/transfer", body)
		},
	}

	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "Close your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printResult(cmd, cfg, http.MethodPost, "/accounts/close", nil)
		},
	}

	cmd.AddCommand(create, show, deposit, withdraw, transfer, closeCmd)
	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger maintenance commands",
	}

	var dataDir string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check a snapshot directory for ledger inconsistencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := snapshot.NewLedgerStore(filepath.Join(dataDir, "accounts.json"))
			if err != nil {
				return err
			}

			report, err := usecase.NewLedgerUseCase(store).CheckConsistency(cmd.Context())
			if report == nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts:      %d\n", report.Accounts)
			fmt.Fprintf(out, "Active:        %d\n", report.Active)
			fmt.Fprintf(out, "Total balance: %s\n", report.TotalBalance.StringFixed(2))
			for _, v := range report.Violations {
				fmt.Fprintf(out, "  - %s\n", v)
			}
			if err != nil {
				fmt.Fprintln(out, "Status: FAILED")
				return err
			}
			fmt.Fprintln(out, "Status: PASSED")
			return nil
		},
	}
	verify.Flags().StringVar(&dataDir, "data-dir", "data", "Snapshot directory")

	cmd.AddCommand(verify)
	return cmd
}

func printResult(cmd *cobra.Command, cfg *cliConfig, method, path string, body any) error {
	env, err := newClient(cfg).do(cmd.Context(), method, path, body, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if env.Message != "" {
		fmt.Fprintln(out, env.Message)
	}
	for _, raw := range []json.RawMessage{env.Account, env.Data} {
		if len(raw) == 0 {
			continue
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return err
		}
		fmt.Fprintln(out, pretty.String())
	}
	return nil
}

type apiClient struct {
	cfg  *cliConfig
	http *retryablehttp.Client
	ids  *idgen.ULIDGenerator
}

func newClient(cfg *cliConfig) *apiClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.retries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = cfg.timeout
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = retryInFlight

	return &apiClient{cfg: cfg, http: rc, ids: idgen.NewULIDGenerator()}
}

// retryInFlight also retries 409, which the server returns while an
// earlier attempt with the same Idempotency-Key is still running.
func retryInFlight(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil && resp.StatusCode == http.StatusConflict {
		return true, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// do sends one request. POSTs carry a fresh Idempotency-Key that is reused
// across retries; the server replays the stored response for a key it has
// already completed instead of applying the operation again.
func (c *apiClient) do(ctx context.Context, method, path string, body any, authed bool) (*envelope, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.baseURL, "/")+path, payload)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set(middleware.IdempotencyKeyHeader, c.ids.Generate())
	}
	if authed {
		token, err := loadToken(c.cfg.tokenFile)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%s (HTTP %d)", env.Message, resp.StatusCode)
	}
	return &env, nil
}

var errNotLoggedIn = errors.New("not logged in: run bankctl login first")

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("server returned no token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func loadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", errNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", errNotLoggedIn
	}
	return token, nil
}
