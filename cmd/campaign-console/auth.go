package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/foxzi/campaign-console/internal/app"
	"github.com/foxzi/campaign-console/internal/models"
)

var (
	loginEmail    string
	loginMobile   string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginMobile, "mobile", "", "Account mobile number")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	loginCmd.MarkFlagsMutuallyExclusive("email", "mobile")
	loginCmd.MarkFlagsOneRequired("email", "mobile")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
		password := loginPassword
		if password == "" {
			var err error
			password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}

		creds := models.Credentials{
			Email:    strings.TrimSpace(loginEmail),
			Mobile:   strings.TrimSpace(loginMobile),
			Password: password,
		}
		if err := a.Login(ctx, creds); err != nil {
			return fmt.Errorf("login failed: %s", a.Session.State().Err)
		}

		st := a.Session.State()
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", st.User.Name)
		return nil
	})
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise, so the password can be piped in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
		if err := a.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
		st := a.Session.State()
		out := cmd.OutOrStdout()

		if st.User != nil {
			fmt.Fprintf(out, "User:    %s (id %d)\n", st.User.Name, st.User.ID)
			if st.User.Email != "" {
				fmt.Fprintf(out, "Email:   %s\n", st.User.Email)
			}
			if st.User.Mobile != "" {
				fmt.Fprintf(out, "Mobile:  %s\n", st.User.Mobile)
			}
			if st.User.Role != "" {
				fmt.Fprintf(out, "Role:    %s\n", st.User.Role)
			}
		}
		fmt.Fprintf(out, "Status:  %s\n", st.Status)
		if !st.ExpiresAt.IsZero() {
			fmt.Fprintf(out, "Expires: %s\n", st.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	})
}
