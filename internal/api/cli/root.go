package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"beetle-pipeline/internal/container"
)

// RootCommand собирает корневую команду со всеми заданиями конвейера.
func RootCommand(c *container.Container) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "beetle-pipeline",
		Short:         "Beetle imaging data preparation and analysis jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		cropCommand(c),
		detectCommand(c),
		rescaleCommand(c),
		uploadCommand(c),
		agreementCommand(c),
	)

	return rootCmd
}

// notifyDone отправляет итог задания; ошибка уведомления не прерывает запуск.
func notifyDone(ctx context.Context, c *container.Container, text string) {
	if err := c.Notifier.Notify(ctx, text); err != nil {
		c.Log.Warn("failed to send notification", zap.Error(err))
	}
}
