package main

import (
	"fmt"
	"time"

	"motoboy/internal/logger"
	"motoboy/internal/model"
	"motoboy/internal/repository"
	"motoboy/internal/webhook"

	"github.com/spf13/cobra"
)

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Inspect and exercise notification endpoints",
	}
	cmd.AddCommand(webhookTestCmd())
	return cmd
}

func webhookTestCmd() *cobra.Command {
	var tipo string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Dispatch a test message to the active endpoint of a category",
		Long: `Dispatch a test message through the same resolution, retry and logging
path the server uses, then print whether it was delivered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tipo != model.WebhookTypeApproval && tipo != model.WebhookTypeGeneral {
				return fmt.Errorf("--tipo must be %s or %s", model.WebhookTypeApproval, model.WebhookTypeGeneral)
			}

			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			dispatcher := webhook.NewDispatcher(
				repository.NewWebhookConfigRepository(db),
				repository.NewWebhookLogRepository(db),
				webhook.Options{
					DefaultTimeout: cfg.Webhook.DefaultTimeout,
					DefaultRetries: cfg.Webhook.DefaultRetries,
					FallbackURLs:   cfg.Webhook.FallbackURLs,
				},
				logger.L(),
			)

			ep, ok := dispatcher.Resolve(cmd.Context(), tipo)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "no endpoint configured for %s\nfalse\n", tipo)
				return nil
			}

			delivered := dispatcher.Deliver(cmd.Context(), ep, tipo, webhook.TestPayload{
				Teste:       true,
				Timestamp:   time.Now().UTC(),
				WebhookNome: ep.Name,
				WebhookTipo: tipo,
				Mensagem:    webhook.PingMessage(ep.Name),
			}, "teste")

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n%t\n", tipo, ep.URL, delivered)
			return nil
		},
	}

	cmd.Flags().StringVar(&tipo, "tipo", model.WebhookTypeApproval, "aprovacao or geral")
	return cmd
}
