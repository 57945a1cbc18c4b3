package world

import (
	"fmt"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Snapshot — сериализуемый снимок содержимого мира.
// Маски соседей и освещение не сохраняются: они выводятся из видов блоков.
type Snapshot struct {
	NumChunks int             `json:"num_chunks"`
	ChunkSize int             `json:"chunk_size"`
	Chunks    []ChunkSnapshot `json:"chunks"`
}

// ChunkSnapshot — виды блоков одного чанка по слоям (индекс y*size+x)
type ChunkSnapshot struct {
	Coords vec.Vec2              `json:"coords"`
	Layers [MaxLayers][]block.ID `json:"layers"`
}

// Validate проверяет, что снимок чанка соответствует размеру
func (cs ChunkSnapshot) Validate(numChunks, chunkSize int) error {
	if cs.Coords.X < 0 || cs.Coords.Y < 0 || cs.Coords.X >= numChunks || cs.Coords.Y >= numChunks {
		return fmt.Errorf("%w: чанк %v вне мира %dx%d", ErrSnapshotMismatch, cs.Coords, numChunks, numChunks)
	}
	for l := Layer(0); l < MaxLayers; l++ {
		if len(cs.Layers[l]) != chunkSize*chunkSize {
			return fmt.Errorf("%w: чанк %v слой %s содержит %d клеток, ожидалось %d",
				ErrSnapshotMismatch, cs.Coords, l, len(cs.Layers[l]), chunkSize*chunkSize)
		}
		for _, id := range cs.Layers[l] {
			if id != block.Empty && !block.IsValidBlockID(id) {
				return fmt.Errorf("%w: %d в чанке %v", ErrUnknownBlock, id, cs.Coords)
			}
		}
	}
	return nil
}
