package container

import (
	"go.uber.org/zap"

	"beetle-pipeline/config"
	app "beetle-pipeline/internal/application"
	"beetle-pipeline/internal/domain/port"
	"beetle-pipeline/internal/infrastructure/cvat"
	"beetle-pipeline/internal/infrastructure/hub"
	"beetle-pipeline/internal/infrastructure/notify"
	"beetle-pipeline/internal/infrastructure/plot"
	"beetle-pipeline/internal/infrastructure/storage"
	"beetle-pipeline/internal/infrastructure/vision"
)

type Container struct {
	Config *config.Config
	Log    *zap.Logger

	CropService      *app.AnnotationCropService
	DetectionService *app.DetectionService
	RescaleService   *app.RescaleService
	UploadService    *app.UploadService
	AgreementService *app.AgreementService
	Notifier         port.Notifier
}

func New(cfg *config.Config, log *zap.Logger) *Container {
	imager := vision.NewDefaultImager()
	manifests := storage.NewCSVManifestStore()
	reports := storage.NewJSONReportWriter()
	detector := vision.NewZeroShotClient(cfg.InferenceURL, cfg.HFToken, nil)
	registry := hub.NewClient(cfg.HubEndpoint, cfg.HFToken, nil)

	return &Container{
		Config:           cfg,
		Log:              log,
		CropService:      app.NewAnnotationCropService(cvat.NewReader(), imager, log),
		DetectionService: app.NewDetectionService(manifests, storage.NewCSVDetectionLogs(), imager, detector, log),
		RescaleService:   app.NewRescaleService(imager, manifests, reports, log),
		UploadService:    app.NewUploadService(registry, log),
		AgreementService: app.NewAgreementService(manifests, plot.NewPDFRenderer(), log),
		Notifier:         newNotifier(cfg, log),
	}
}

// newNotifier подключает Telegram, если он настроен; иначе уведомления отключены.
func newNotifier(cfg *config.Config, log *zap.Logger) port.Notifier {
	if !cfg.NotificationsEnabled() {
		return notify.Noop{}
	}

	tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, nil)
	if err != nil {
		log.Warn("telegram notifications disabled", zap.Error(err))
		return notify.Noop{}
	}
	return tg
}
