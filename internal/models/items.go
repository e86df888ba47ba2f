package models

// Identifiable is implemented by embedded activity items.
type Identifiable interface {
	ItemID() string
}

// FindItem returns the index of the item with the given id, or -1.
func FindItem[T Identifiable](items []T, id string) int {
	for i, item := range items {
		if item.ItemID() == id {
			return i
		}
	}
	return -1
}

// RemoveItem returns a new slice without the item carrying id and whether it was found.
// The input slice is left untouched.
func RemoveItem[T Identifiable](items []T, id string) ([]T, bool) {
	idx := FindItem(items, id)
	if idx < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	out = append(out, items[idx+1:]...)
	return out, true
}
