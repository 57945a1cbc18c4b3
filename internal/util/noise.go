package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина по умолчанию
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = 3   // Количество октав
)

// HeightNoise — детерминированный по сиду источник шума Перлина.
// Каждый генератор держит свой экземпляр, глобального состояния нет.
type HeightNoise struct {
	seed  int64
	noise *perlin.Perlin
}

// NewHeightNoise создаёт генератор шума с указанным сидом
func NewHeightNoise(seed int64) *HeightNoise {
	return &HeightNoise{
		seed:  seed,
		noise: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
	}
}

// Seed возвращает сид генератора
func (h *HeightNoise) Seed() int64 {
	return h.seed
}

// Noise1D возвращает значение шума в диапазоне примерно от -1 до 1
func (h *HeightNoise) Noise1D(x float64) float64 {
	return h.noise.Noise1D(x)
}

// Normalized1D возвращает значение шума, приведённое к диапазону от 0 до 1
func (h *HeightNoise) Normalized1D(x float64) float64 {
	return Clamp01((h.noise.Noise1D(x) + 1.0) / 2.0)
}

// Clamp01 ограничивает значение отрезком [0, 1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
