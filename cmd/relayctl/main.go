package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wavythought/relay/internal/clients/relay"
	"github.com/wavythought/relay/internal/form"
	"github.com/wavythought/relay/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "relayctl - talk to the WavyThought contact relay",
	Long: `relayctl submits contact form entries to the WavyThought contact relay
and checks that the relay is up.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level, _ := cmd.Flags().GetString("log-level")
		slog.SetDefault(logger.New(logger.ParseLevel(level), os.Stderr))
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a contact form entry",
	Long: `Submit a contact form entry the same way the website form does.

Example:
  relayctl send --name Ana --email ana@example.com --message "Hi there"
  relayctl send --url https://api.wavythought.com --name Ana --email ana@example.com --message "Hi" --subscribe=false`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := newClient(cmd)

		f := form.New(client)
		f.OnChange(func(st form.State) {
			if st.Status == form.StatusLoading {
				fmt.Fprintln(cmd.ErrOrStderr(), st.Feedback)
			}
		})

		for _, field := range []form.Field{form.FieldName, form.FieldEmail, form.FieldMessage} {
			value, _ := cmd.Flags().GetString(string(field))

			if err := f.UpdateField(field, value); err != nil {
				return err
			}
		}

		subscribe, _ := cmd.Flags().GetBool("subscribe")
		if err := f.UpdateField(form.FieldSubscribe, strconv.FormatBool(subscribe)); err != nil {
			return err
		}

		st := f.Submit(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", st.Status, st.Feedback)

		if st.Status != form.StatusSuccess {
			return fmt.Errorf("submission ended in %s state", st.Status)
		}

		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the relay is up",
	Long: `Probe GET /health on the relay, retrying connection failures and 5xx responses.

Example:
  relayctl health --retries 10`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		err := newClient(cmd).Health(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ok")

		return nil
	},
}

func newClient(cmd *cobra.Command) *relay.Client {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	retries, _ := cmd.Flags().GetInt("retries")

	return relay.NewClient(url, timeout, retries)
}

func init() {
	rootCmd.PersistentFlags().String("url", "http://localhost:4000", "Relay base URL")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	sendCmd.Flags().String("name", "", "Your name")
	sendCmd.Flags().String("email", "", "Your email address")
	sendCmd.Flags().String("message", "", "Your message")
	sendCmd.Flags().Bool("subscribe", true, "Opt into studio updates")

	healthCmd.Flags().Int("retries", 0, "Number of retries before giving up")

	rootCmd.AddCommand(sendCmd, healthCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	cancel()

	if err != nil {
		os.Exit(1)
	}
}
