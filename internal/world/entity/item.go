package entity

import (
	"fmt"

	"github.com/annel0/tileworld/internal/world/block"
)

// ItemID — идентификатор предмета
type ItemID uint8

const (
	ItemEarth ItemID = iota
	ItemGrass
	ItemRock
	ItemLightstone
	ItemTreewood
	ItemLeaves
	ItemWood

	NumItems
)

// StackLimit — максимальное количество предметов в одной ячейке
const StackLimit = 500

var itemBlocks = [NumItems]block.ID{
	ItemEarth:      block.Earth,
	ItemGrass:      block.Grass,
	ItemRock:       block.Rock,
	ItemLightstone: block.Lightstone,
	ItemTreewood:   block.Treewood,
	ItemLeaves:     block.Leaves,
	ItemWood:       block.Wood,
}

// ItemFromBlock возвращает предмет, выпадающий из блока
func ItemFromBlock(id block.ID) (ItemID, bool) {
	for item, b := range itemBlocks {
		if b == id && id != block.Empty {
			return ItemID(item), true
		}
	}
	return 0, false
}

// Block возвращает вид блока, который ставит предмет
func (i ItemID) Block() (block.ID, bool) {
	if i >= NumItems {
		return block.Empty, false
	}
	return itemBlocks[i], true
}

func (i ItemID) String() string {
	if b, ok := i.Block(); ok {
		return b.String()
	}
	return fmt.Sprintf("Item(%d)", uint8(i))
}
