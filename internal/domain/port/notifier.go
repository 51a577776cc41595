package port

import "context"

// Notifier интерфейс отправки итогов запуска
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
