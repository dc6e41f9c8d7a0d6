package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"constructerp/internal/config"
	"constructerp/internal/service"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Sign in as one of the demo accounts",
	Long:  "Sign in as admin, finance, or pm. Prompts for the username when none is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the saved session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func promptUsername() (string, error) {
	var username string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Username").
			Description("Demo accounts: admin, finance, pm").
			Value(&username).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("username is required")
				}
				return nil
			}),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return username, nil
}

func runLogin(_ *cobra.Command, args []string) error {
	var username string
	if len(args) == 1 {
		username = args[0]
	} else {
		u, err := promptUsername()
		if err != nil {
			return err
		}
		username = u
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	svc, _, closeFn, err := loadService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := svc.Login(ctx, username)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return fmt.Errorf("unknown user %q (try admin, finance, or pm)", username)
		}
		return fmt.Errorf("login: %w", err)
	}

	if err := config.SaveSession(config.Session{
		Username:   u.Username,
		Role:       string(u.Role),
		LoggedInAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("  Signed in as %s (%s)\n", u.Username, u.Role)
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	sess, err := config.LoadSession()
	if errors.Is(err, config.ErrNoSession) {
		fmt.Println("  Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	svc, _, closeFn, err := loadService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	svc.Logout(ctx, sess.Username)
	if err := config.ClearSession(); err != nil {
		return err
	}
	fmt.Printf("  Signed out %s\n", sess.Username)
	return nil
}

func runWhoami(_ *cobra.Command, _ []string) error {
	sess, err := config.LoadSession()
	if errors.Is(err, config.ErrNoSession) {
		fmt.Println("  Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("  User:    %s\n", sess.Username)
	if sess.Role != "" {
		fmt.Printf("  Role:    %s\n", sess.Role)
	}
	if !sess.LoggedInAt.IsZero() {
		fmt.Printf("  Since:   %s\n", sess.LoggedInAt.Local().Format(time.RFC1123))
	}
	fmt.Printf("  Session: %s\n", config.SessionPath())
	return nil
}
