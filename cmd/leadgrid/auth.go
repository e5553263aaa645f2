package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username == "" {
			username = promptLine("Username: ")
		}
		if password == "" {
			password = promptLine("Password: ")
		}

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.gate.Login(cmd.Context(), username, password); err != nil {
			return err
		}
		env.persistSession()
		printSuccess("Logged in as %s", env.gate.User().Username)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if username == "" {
			username = promptLine("Username: ")
		}
		if email == "" {
			email = promptLine("Email: ")
		}
		if password == "" {
			password = promptLine("Password: ")
		}

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		userID, err := env.client.Register(cmd.Context(), username, email, password)
		if err != nil {
			return err
		}
		printSuccess("Account created (user %s), run: leadgrid login", userID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		// Logout never fails: the backend call is best-effort and the
		// local session and caches are dropped regardless.
		env.gate.Logout(cmd.Context())
		printSuccess("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}
		user := env.gate.User()
		printStatus("Username", "%s", user.Username)
		printStatus("Email", "%s", user.Email)
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		msg, token, err := env.client.ForgotPassword(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		if token != "" {
			printStatus("Reset token", "%s", token)
		}
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <token>",
	Short: "Complete a password reset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newPassword, _ := cmd.Flags().GetString("password")
		if newPassword == "" {
			newPassword = promptLine("New password: ")
		}

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		username, err := env.client.ValidateResetToken(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if username != "" {
			printStep("Resetting password for %s", username)
		}
		if err := env.client.ResetPassword(cmd.Context(), args[0], newPassword); err != nil {
			return err
		}
		printSuccess("Password reset, run: leadgrid login")
		return nil
	},
}

func promptLine(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	loginCmd.Flags().String("username", "", "account username")
	loginCmd.Flags().String("password", "", "account password")
	registerCmd.Flags().String("username", "", "account username")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "account password")
	resetPasswordCmd.Flags().String("password", "", "new password")
}
