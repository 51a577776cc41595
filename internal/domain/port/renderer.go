package port

import "beetle-pipeline/internal/domain/entity"

// AgreementRenderer интерфейс отрисовки графиков согласия
type AgreementRenderer interface {
	Render(path string, fig entity.AgreementFigure) error
}
