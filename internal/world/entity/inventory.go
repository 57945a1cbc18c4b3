package entity

// DefaultInventorySlots — размер инвентаря игрока по умолчанию
const DefaultInventorySlots = 32

// Stack — ячейка инвентаря
type Stack struct {
	Item  ItemID
	Count int
}

// Inventory — фиксированный набор ячеек со стопками предметов
type Inventory struct {
	slots    []Stack
	selected int
}

// NewInventory создаёт инвентарь из n ячеек
func NewInventory(n int) *Inventory {
	return &Inventory{slots: make([]Stack, n)}
}

// Slots возвращает копию ячеек
func (inv *Inventory) Slots() []Stack {
	out := make([]Stack, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// Add добавляет предметы, сначала дополняя существующие стопки.
// Возвращает количество, которое не поместилось.
func (inv *Inventory) Add(item ItemID, count int) int {
	for i := range inv.slots {
		if count == 0 {
			return 0
		}
		s := &inv.slots[i]
		if s.Count > 0 && s.Item == item && s.Count < StackLimit {
			n := min(count, StackLimit-s.Count)
			s.Count += n
			count -= n
		}
	}
	for i := range inv.slots {
		if count == 0 {
			return 0
		}
		s := &inv.slots[i]
		if s.Count == 0 {
			n := min(count, StackLimit)
			*s = Stack{Item: item, Count: n}
			count -= n
		}
	}
	return count
}

// Count возвращает общее количество предмета
func (inv *Inventory) Count(item ItemID) int {
	total := 0
	for _, s := range inv.slots {
		if s.Count > 0 && s.Item == item {
			total += s.Count
		}
	}
	return total
}

// Remove забирает count предметов. Если предметов недостаточно, инвентарь не меняется.
func (inv *Inventory) Remove(item ItemID, count int) bool {
	if inv.Count(item) < count {
		return false
	}
	for i := len(inv.slots) - 1; i >= 0 && count > 0; i-- {
		s := &inv.slots[i]
		if s.Count == 0 || s.Item != item {
			continue
		}
		n := min(count, s.Count)
		s.Count -= n
		count -= n
	}
	return true
}

// Select выбирает активную ячейку
func (inv *Inventory) Select(slot int) {
	if slot >= 0 && slot < len(inv.slots) {
		inv.selected = slot
	}
}

// Selected возвращает содержимое активной ячейки
func (inv *Inventory) Selected() (Stack, bool) {
	if len(inv.slots) == 0 {
		return Stack{}, false
	}
	s := inv.slots[inv.selected]
	return s, s.Count > 0
}

// Restore заменяет содержимое ячеек. Лишние стопки отбрасываются.
func (inv *Inventory) Restore(slots []Stack) {
	for i := range inv.slots {
		inv.slots[i] = Stack{}
	}
	copy(inv.slots, slots)
}
