package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type accountView struct {
	ID          string      `json:"id"`
	AccountType string      `json:"account_type"`
	Balance     json.Number `json:"balance"`
	Currency    string      `json:"currency"`
}

func printAccounts(accounts []accountView) {
	for _, a := range accounts {
		fmt.Printf("%-10s %s  %s %s\n", a.AccountType, a.ID, a.Currency, a.Balance)
	}
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}

		var resp struct {
			Token    string        `json:"token"`
			FullName string        `json:"full_name"`
			Accounts []accountView `json:"accounts"`
		}
		err = callAPI("POST", "/api/auth/login", "", map[string]string{
			"email":    args[0],
			"password": strings.TrimRight(password, "\r\n"),
		}, &resp)
		if err != nil {
			return err
		}
		if err := saveToken(resp.Token); err != nil {
			return err
		}

		fmt.Printf("Logged in as %s\n", resp.FullName)
		printAccounts(resp.Accounts)
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts and balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := loadToken()
		if err != nil {
			return err
		}

		refresh, _ := cmd.Flags().GetBool("refresh")
		path := "/api/accounts"
		if refresh {
			path += "?refresh=1"
		}

		var resp struct {
			Accounts []accountView `json:"accounts"`
		}
		if err := callAPI("GET", path, token, nil, &resp); err != nil {
			return err
		}
		printAccounts(resp.Accounts)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed <account-id>",
	Short: "Show the grouped transaction feed for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := loadToken()
		if err != nil {
			return err
		}

		filter, _ := cmd.Flags().GetString("filter")
		path := fmt.Sprintf("/api/accounts/%s/transactions?refresh=1&filter=%s", args[0], filter)

		var resp struct {
			Groups []struct {
				Title string `json:"title"`
				Items []struct {
					Direction        string      `json:"direction"`
					CounterAccountID string      `json:"counter_account_id"`
					Amount           json.Number `json:"amount"`
					Currency         string      `json:"currency"`
					Date             string      `json:"date"`
					Status           string      `json:"status"`
					Note             string      `json:"note"`
				} `json:"items"`
			} `json:"groups"`
		}
		if err := callAPI("GET", path, token, nil, &resp); err != nil {
			return err
		}

		if len(resp.Groups) == 0 {
			fmt.Println("No transactions.")
			return nil
		}
		for _, g := range resp.Groups {
			fmt.Println(g.Title)
			for _, it := range g.Items {
				sign := "+"
				if it.Direction == "sent" {
					sign = "-"
				}
				line := fmt.Sprintf("  %s  %s%s %s  %s", it.Date, sign, it.Amount, it.Currency, it.CounterAccountID)
				if it.Status == "pending" {
					line += "  (pending)"
				}
				if it.Note != "" {
					line += "  " + it.Note
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Move funds between two of your accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := loadToken()
		if err != nil {
			return err
		}

		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		amount, _ := cmd.Flags().GetString("amount")
		note, _ := cmd.Flags().GetString("note")

		request := map[string]string{
			"from_account_id": from,
			"to_account_id":   to,
			"amount":          amount,
			"note":            note,
		}

		var preview struct {
			Summary      string `json:"summary"`
			ConfirmToken string `json:"confirm_token"`
		}
		if err := callAPI("POST", "/api/transfers/preview", token, request, &preview); err != nil {
			return err
		}

		fmt.Println(preview.Summary)
		fmt.Print("Confirm? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Cancelled.")
			return nil
		}

		submit := map[string]string{
			"from_account_id": from,
			"to_account_id":   to,
			"amount":          amount,
			"note":            note,
			"confirm_token":   preview.ConfirmToken,
		}
		var resp struct {
			Transaction struct {
				ID string `json:"id"`
			} `json:"transaction"`
		}
		if err := callAPI("POST", "/api/transfers", token, submit, &resp); err != nil {
			return err
		}
		fmt.Printf("Transfer complete (%s)\n", resp.Transaction.ID)
		return nil
	},
}

func init() {
	accountsCmd.Flags().Bool("refresh", false, "refetch the catalog from upstream")
	feedCmd.Flags().String("filter", "all", "all, sent or received")

	transferCmd.Flags().String("from", "", "source account id")
	transferCmd.Flags().String("to", "", "destination account id")
	transferCmd.Flags().String("amount", "", "amount to move, e.g. 25.00")
	transferCmd.Flags().String("note", "", "optional note")
	_ = transferCmd.MarkFlagRequired("from")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("amount")
}
