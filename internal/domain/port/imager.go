package port

import (
	"image"
	"image/color"
)

// Imager интерфейс работы с файлами изображений
type Imager interface {
	// Load читает изображение и приводит его к RGB
	Load(path string) (image.Image, error)

	// Decode читает изображение без смены цветовой модели
	Decode(path string) (image.Image, error)

	// Dimensions возвращает размеры без полного декодирования
	Dimensions(path string) (width, height int, err error)

	// Crop вырезает область изображения
	Crop(img image.Image, rect image.Rectangle) image.Image

	// Resize масштабирует изображение фильтром Ланцоша
	Resize(img image.Image, width, height int) image.Image

	// Letterbox вписывает изображение в квадрат size×size с заливкой полей
	Letterbox(img image.Image, size int, fill color.RGBA) image.Image

	// Save сохраняет изображение в формате по расширению файла
	Save(path string, img image.Image) error
}
