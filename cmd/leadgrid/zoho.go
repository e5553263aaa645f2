package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nravi/leadgrid/internal/api"
	"github.com/nravi/leadgrid/internal/store"
	"github.com/nravi/leadgrid/internal/view"
)

var zohoCmd = &cobra.Command{
	Use:   "zoho",
	Short: "Manage the Zoho CRM connection and email replies",
}

var zohoCredentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Save the Zoho OAuth client registration",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client-id")
		clientSecret, _ := cmd.Flags().GetString("client-secret")
		redirectURI, _ := cmd.Flags().GetString("redirect-uri")
		userID, _ := cmd.Flags().GetString("user-id")

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		creds := api.ZohoCredentials{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURI:  redirectURI,
		}
		if err := env.client.SaveZohoCredentials(cmd.Context(), userID, creds); err != nil {
			return err
		}
		if err := env.store.PutJSON(store.KeyZohoCreds, creds); err != nil {
			printWarning("Could not cache credentials: %v", err)
		}
		printSuccess("Zoho credentials saved")
		return nil
	},
}

var zohoStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the CRM connection state",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		status, err := env.client.GetZohoStatus(cmd.Context())
		if err != nil {
			// Fall back to the last known state when the backend is
			// unreachable.
			var cached api.ZohoStatus
			if cacheErr := env.store.GetJSON(store.KeyZohoStatus, &cached); cacheErr == nil {
				printWarning("Backend unreachable, showing cached status")
				renderZohoStatus(cached)
				return nil
			}
			return err
		}

		env.store.PutJSON(store.KeyZohoStatus, status)
		renderZohoStatus(status)
		return nil
	},
}

func renderZohoStatus(status api.ZohoStatus) {
	if status.Connected {
		printSuccess("Connected to Zoho CRM")
	} else {
		printWarning("Not connected to Zoho CRM")
	}
	if status.Message != "" {
		printStatus("Message", "%s", status.Message)
	}
}

var zohoConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Run the OAuth consent flow",
	Long: `Run the OAuth consent flow.

Prints the Zoho consent URL and listens on a local port for the
redirect. Open the URL in a browser, approve access, and the command
completes once the authorization code arrives.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		authURL, err := env.client.GetZohoAuthURL(cmd.Context())
		if err != nil {
			return err
		}

		printStep("Open this URL in your browser:")
		fmt.Println(authURL)
		printStep("Waiting for the redirect on %s...", addr)

		code, err := api.WaitForZohoCallback(cmd.Context(), addr)
		if err != nil {
			return err
		}
		printSuccess("Authorization code received (%d chars)", len(code))

		// The backend finishes the token exchange on its own redirect
		// handler; give it a moment before re-checking.
		time.Sleep(2 * time.Second)
		status, err := env.client.GetZohoStatus(cmd.Context())
		if err != nil {
			return err
		}
		env.store.PutJSON(store.KeyZohoStatus, status)
		renderZohoStatus(status)
		return nil
	},
}

var zohoFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the CRM's lead fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		fields, err := env.client.GetZohoFields(cmd.Context())
		if err != nil {
			return err
		}
		for _, f := range fields {
			view.RenderDetail(os.Stdout, f)
			fmt.Println()
		}
		return nil
	},
}

// --- replies ---

var zohoRepliesCmd = &cobra.Command{
	Use:   "replies",
	Short: "Check, answer and export campaign replies",
}

var zohoRepliesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Scan the sender inbox for replies and draft answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, _ := cmd.Flags().GetString("sender")
		password, _ := cmd.Flags().GetString("password")

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		printStep("Checking inbox for %s...", sender)
		replies, msg, err := env.client.CheckReplies(cmd.Context(), sender, password)
		if err != nil {
			return err
		}
		if msg != "" {
			fmt.Println(msg)
		}

		for i, r := range replies {
			fmt.Printf("%d. %s: %s (%s)\n", i+1, r.From, r.Subject, r.Date)
		}

		if generate, _ := cmd.Flags().GetBool("generate"); generate && len(replies) > 0 {
			printStep("Drafting replies...")
			for _, r := range replies {
				draft, err := env.client.GenerateReply(cmd.Context(), r.Body)
				if err != nil {
					printError("Draft for %s failed: %v", r.From, err)
					continue
				}
				fmt.Printf("\n--- Reply to %s ---\n%s\n", r.From, draft)
			}
		}
		return nil
	},
}

var zohoRepliesSendAllCmd = &cobra.Command{
	Use:   "send-all",
	Short: "Draft and send a reply to every unanswered message",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, _ := cmd.Flags().GetString("sender")
		password, _ := cmd.Flags().GetString("password")

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		printStep("Checking inbox for %s...", sender)
		replies, _, err := env.client.CheckReplies(cmd.Context(), sender, password)
		if err != nil {
			return err
		}
		if len(replies) == 0 {
			printWarning("No replies to answer")
			return nil
		}

		printStep("Drafting %d replies...", len(replies))
		drafts := make(map[string]string, len(replies))
		for _, r := range replies {
			draft, err := env.client.GenerateReply(cmd.Context(), r.Body)
			if err != nil {
				printError("Draft for %s failed: %v", r.From, err)
				continue
			}
			drafts[r.ID] = draft
		}

		printStep("Sending...")
		result, err := env.client.SendAllReplies(cmd.Context(), sender, password, replies, drafts)
		if err != nil {
			return err
		}

		for _, item := range result.Items {
			if item.Sent {
				printSuccess("%s: %s", item.Email, item.Message)
			} else {
				printError("%s: %s", item.Email, item.Message)
			}
		}
		if result.Failed > 0 {
			printWarning("Sent %d, failed %d", result.Sent, result.Failed)
			return nil
		}
		printSuccess("Sent all %d replies", result.Sent)
		return nil
	},
}

var zohoRepliesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the reply log as a spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = fmt.Sprintf("email_replies_%s.xlsx", time.Now().Format("2006-01-02"))
		}

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		data, err := env.client.DownloadReplies(cmd.Context())
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("writing spreadsheet: %w", err)
		}
		printSuccess("Reply log saved to %s", output)
		return nil
	},
}

var zohoClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget cached Zoho credentials and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		env.store.Delete(store.KeyZohoCreds)
		env.store.Delete(store.KeyZohoStatus)
		printSuccess("Cached Zoho data cleared")
		return nil
	},
}

func init() {
	zohoCredentialsCmd.Flags().String("client-id", "", "Zoho OAuth client id")
	zohoCredentialsCmd.Flags().String("client-secret", "", "Zoho OAuth client secret")
	zohoCredentialsCmd.Flags().String("redirect-uri", "", "registered redirect URI")
	zohoCredentialsCmd.Flags().String("user-id", "", "backend account scope for the credentials")
	zohoCredentialsCmd.MarkFlagRequired("client-id")
	zohoCredentialsCmd.MarkFlagRequired("client-secret")
	zohoCredentialsCmd.MarkFlagRequired("redirect-uri")

	zohoConnectCmd.Flags().String("listen", "127.0.0.1:8765", "local address for the OAuth redirect")

	zohoRepliesCheckCmd.Flags().String("sender", "", "sender mailbox to scan")
	zohoRepliesCheckCmd.Flags().String("password", "", "sender mailbox password")
	zohoRepliesCheckCmd.Flags().Bool("generate", false, "also draft a reply for each message")
	zohoRepliesCheckCmd.MarkFlagRequired("sender")
	zohoRepliesCheckCmd.MarkFlagRequired("password")

	zohoRepliesSendAllCmd.Flags().String("sender", "", "sender mailbox to scan")
	zohoRepliesSendAllCmd.Flags().String("password", "", "sender mailbox password")
	zohoRepliesSendAllCmd.MarkFlagRequired("sender")
	zohoRepliesSendAllCmd.MarkFlagRequired("password")

	zohoRepliesExportCmd.Flags().String("output", "", "output file path")

	zohoRepliesCmd.AddCommand(zohoRepliesCheckCmd)
	zohoRepliesCmd.AddCommand(zohoRepliesSendAllCmd)
	zohoRepliesCmd.AddCommand(zohoRepliesExportCmd)

	zohoCmd.AddCommand(zohoCredentialsCmd)
	zohoCmd.AddCommand(zohoStatusCmd)
	zohoCmd.AddCommand(zohoConnectCmd)
	zohoCmd.AddCommand(zohoFieldsCmd)
	zohoCmd.AddCommand(zohoRepliesCmd)
	zohoCmd.AddCommand(zohoClearCmd)
}
