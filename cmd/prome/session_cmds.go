package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/promehq/go-prome-client/callback"
	"github.com/promehq/go-prome-client/session"
	"github.com/spf13/cobra"
)

var (
	loginID      string
	password     string
	cancelReason string
)

func init() {
	loginCmd.Flags().StringVar(&loginID, "login-id", "", "account login id")
	loginCmd.Flags().StringVar(&password, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("login-id")
	_ = loginCmd.MarkFlagRequired("password")

	cancelPaymentCmd.Flags().StringVar(&cancelReason, "reason", "", "cancellation reason")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with backend credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		data, err := a.api.Login(ctx, loginID, password)
		if err != nil {
			return errors.Wrap(err, "[login]")
		}

		user := callback.UserFromToken(data.AccessToken)
		if user.LoginID == "" {
			user.LoginID = loginID
		}

		refinement, err := a.sessions.Login(data.AccessToken, data.RefreshToken, user)
		if err != nil {
			return errors.Wrap(err, "[login] committing session")
		}
		if _, err := refinement.Await(ctx); err != nil {
			a.log.Debug().Err(err).Msg("subscription refinement cut short")
		}

		return printSnapshot(a.sessions.Snapshot())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.sessions.Logout()
		fmt.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if refinement, restored := a.sessions.Rehydrate(); restored {
			if _, err := refinement.Await(cmd.Context()); err != nil {
				a.log.Debug().Err(err).Msg("subscription refinement cut short")
			}
		}
		return printSnapshot(a.sessions.Snapshot())
	},
}

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Re-check the subscription with the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, restored := a.sessions.Rehydrate(); !restored {
			return errors.New("[subscription] no stored session, sign in first")
		}
		if _, err := a.sessions.RefreshSubscription().Await(cmd.Context()); err != nil {
			return errors.Wrap(err, "[subscription]")
		}
		return printSnapshot(a.sessions.Snapshot())
	},
}

var cancelPaymentCmd = &cobra.Command{
	Use:   "cancel-payment",
	Short: "Cancel the pending payment",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, restored := a.sessions.Rehydrate(); !restored {
			return errors.New("[cancel-payment] no stored session, sign in first")
		}
		if err := a.api.CancelPayment(cmd.Context(), cancelReason); err != nil {
			return errors.Wrap(err, "[cancel-payment]")
		}
		if _, err := a.sessions.RefreshSubscription().Await(cmd.Context()); err != nil {
			a.log.Debug().Err(err).Msg("post-cancel refresh cut short")
		}

		fmt.Println("payment cancelled")
		return printSnapshot(a.sessions.Snapshot())
	},
}

func printSnapshot(snap session.Snapshot) error {
	out := struct {
		State        session.State         `json:"state"`
		User         *session.User         `json:"user,omitempty"`
		Subscription *session.Subscription `json:"subscription,omitempty"`
	}{snap.State, snap.User, snap.Subscription}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
