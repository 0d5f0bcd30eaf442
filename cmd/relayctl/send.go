package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insider-one/push-relay/internal/app"
	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
)

func sendCmd() *cobra.Command {
	var (
		token     string
		text      string
		parseMode string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Relay one message and print the result envelope",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := domain.ParseFormattingMode(parseMode)
			if err != nil {
				return err
			}

			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := app.NewLogger(cmd.ErrOrStderr(), cfg.App.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			relay, err := app.New(ctx, cfg, logger)
			defer relay.Close()
			if err != nil {
				return err
			}

			result, err := relay.Dispatcher.SendMessage(ctx, &domain.MessageRequest{
				Text:      text,
				ParseMode: mode,
			}, token)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if !result.OK() {
				return fmt.Errorf("relay rejected message: %s", result.Code.Name())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "chat token")
	cmd.Flags().StringVar(&text, "text", "", "message text")
	cmd.Flags().StringVarP(&parseMode, "parse-mode", "p", "", "Markdown, MarkdownV2 or HTML")
	cmd.MarkFlagRequired("token")

	return cmd
}
