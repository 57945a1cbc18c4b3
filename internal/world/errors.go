package world

import "errors"

var (
	ErrOutOfBounds      = errors.New("координаты за пределами мира")
	ErrInvalidLayer     = errors.New("недопустимый слой")
	ErrUnknownBlock     = errors.New("неизвестный вид блока")
	ErrEmptyCell        = errors.New("клетка пуста")
	ErrCellOccupied     = errors.New("клетка занята")
	ErrCellBlocked      = errors.New("клетку занимает сущность")
	ErrNilChunkManager  = errors.New("менеджер чанков не задан")
	ErrNilEntity        = errors.New("сущность не задана")
	ErrEntityExists     = errors.New("сущность уже добавлена в мир")
	ErrEntityNotFound   = errors.New("сущность не найдена")
	ErrDuplicatePlayer  = errors.New("игрок с таким именем уже существует")
	ErrSnapshotMismatch = errors.New("размеры снимка не совпадают с миром")
	ErrInvalidSize      = errors.New("недопустимый размер мира")
)
