package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
)

// chunkCodec упаковывает виды блоков чанка: слои подряд по байту на клетку, затем zstd.
// Encoder/Decoder используются только через EncodeAll/DecodeAll и безопасны
// для конкурентного вызова.
type chunkCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newChunkCodec() (*chunkCodec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("создание zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("создание zstd decoder: %w", err)
	}
	return &chunkCodec{enc: enc, dec: dec}, nil
}

func (c *chunkCodec) close() {
	c.enc.Close()
	c.dec.Close()
}

func (c *chunkCodec) encode(cs world.ChunkSnapshot) []byte {
	n := 0
	for l := range cs.Layers {
		n += len(cs.Layers[l])
	}
	raw := make([]byte, 0, n)
	for l := range cs.Layers {
		for _, id := range cs.Layers[l] {
			raw = append(raw, byte(id))
		}
	}
	return c.enc.EncodeAll(raw, nil)
}

func (c *chunkCodec) decode(coords vec.Vec2, chunkSize int, data []byte) (world.ChunkSnapshot, error) {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return world.ChunkSnapshot{}, fmt.Errorf("распаковка чанка %v: %w", coords, err)
	}
	cells := chunkSize * chunkSize
	if len(raw) != cells*int(world.MaxLayers) {
		return world.ChunkSnapshot{}, fmt.Errorf("чанк %v: %d байт, ожидалось %d", coords, len(raw), cells*int(world.MaxLayers))
	}
	cs := world.ChunkSnapshot{Coords: coords}
	for l := 0; l < int(world.MaxLayers); l++ {
		ids := make([]block.ID, cells)
		for i := range ids {
			ids[i] = block.ID(raw[l*cells+i])
		}
		cs.Layers[l] = ids
	}
	return cs, nil
}
