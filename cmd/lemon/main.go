package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "github.com/bitpixi2/lemonomics/internal/cli"
	"github.com/bitpixi2/lemonomics/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "lemon",
		Short:        "Lemonomics CLI stand client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newSignupCmd(&apiBase),
		newLoginCmd(&apiBase),
		newLogoutCmd(),
		newTodayCmd(&apiBase),
		newPlayCmd(&apiBase),
		newProfileCmd(&apiBase),
		newTopCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newSignupCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a Lemonomics account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptRequired("Password")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Signup(ctx, email, password)
			if err != nil {
				return err
			}
			if strings.TrimSpace(session.AccessToken) == "" {
				printWarn("Signup created. Verify email, then run `lemon login`.")
				return nil
			}
			if err := cl.SaveSession(cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			}); err != nil {
				return err
			}
			printSuccess("Signup complete. Session saved.")
			return nil
		},
	}
}

func newLoginCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login to Lemonomics",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptRequired("Password")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			}); err != nil {
				return err
			}
			printSuccess("Login successful.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear local session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newTodayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's market conditions and this week's festival",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			daily, err := client.TodayCycle(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			weekly, err := client.WeekCycle(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderToday(daily, weekly)
		},
	}
}

func newPlayCmd(apiBase *string) *cobra.Command {
	var price float64
	var adSpend float64
	var receipts []string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run your stand for the day",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			if !cmd.Flags().Changed("price") {
				price, err = promptFloat("Price per cup ($)", 0)
				if err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("ad-spend") {
				adSpend, err = promptFloat("Ad spend ($, 0 for none)", -1)
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Play(ctx, sess.AccessToken, price, adSpend, receipts, uuid.NewString())
			if err != nil {
				return err
			}
			return renderPlay(out)
		},
	}
	cmd.Flags().Float64Var(&price, "price", 1.50, "price per cup in dollars")
	cmd.Flags().Float64Var(&adSpend, "ad-spend", 0, "advertising spend in dollars")
	cmd.Flags().StringSliceVar(&receipts, "receipt", nil, "verified power-up receipt id (repeatable)")
	return cmd
}

func newProfileCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your stand's lifetime stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Profile(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderProfile(out)
		},
	}
}

func newTopCmd(apiBase *string) *cobra.Command {
	var pure bool
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the best-day leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Leaderboard(ctx, sess.AccessToken, pure, limit)
			if err != nil {
				return err
			}
			return renderLeaderboard(out, pure)
		},
	}
	cmd.Flags().BoolVar(&pure, "pure", false, "rank by best day without paid power-ups")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of rows")
	return cmd
}
