package entity

import "github.com/annel0/tileworld/internal/vec"

// Параметры выпавших предметов (в пикселях)
const (
	DropSize          = 8.0
	DropMagnetRadius  = 64.0 // Радиус притяжения к игроку
	DropCollectRadius = 8.0  // Радиус подбора
	DropMagnetSpeed   = 6.0  // Сдвиг за кадр при притяжении
)

// Drop — выпавший предмет, лежащий в мире
type Drop struct {
	Body
	Item  ItemID
	Count int
}

// NewDrop создаёт предмет с центром в точке (x, y)
func NewDrop(item ItemID, count int, x, y float64) *Drop {
	return &Drop{
		Body:  NewBody(x-DropSize/2, y-DropSize/2, DropSize, DropSize, true),
		Item:  item,
		Count: count,
	}
}

func (d *Drop) Type() EntityType { return EntityTypeDrop }

// Tick применяет гравитацию
func (d *Drop) Tick(dt float64, w World) {
	d.integrate(dt, w)
}

// MagnetRadiusSq возвращает квадрат радиуса притяжения
func (d *Drop) MagnetRadiusSq() float64 { return DropMagnetRadius * DropMagnetRadius }

// CollectRadiusSq возвращает квадрат радиуса подбора
func (d *Drop) CollectRadiusSq() float64 { return DropCollectRadius * DropCollectRadius }

// PullTowards сдвигает предмет на DropMagnetSpeed в сторону цели
func (d *Drop) PullTowards(target vec.Vec2Float, w World) {
	step := target.Sub(d.Mid()).Normalized().Mul(DropMagnetSpeed)
	d.Move(step.X, step.Y, w)
}
