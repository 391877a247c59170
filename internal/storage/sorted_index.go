package storage

import "github.com/google/btree"

const btreeDegree = 32

type keyItem struct {
	key string
	h   handle
}

// sortedIndex orders entries by key (byte-wise lexicographic).
type sortedIndex struct {
	tree *btree.BTreeG[keyItem]
}

func newSortedIndex() *sortedIndex {
	return &sortedIndex{
		tree: btree.NewG(btreeDegree, func(a, b keyItem) bool {
			return a.key < b.key
		}),
	}
}

func (x *sortedIndex) insert(key string, h handle) {
	x.tree.ReplaceOrInsert(keyItem{key: key, h: h})
}

func (x *sortedIndex) delete(key string) bool {
	_, ok := x.tree.Delete(keyItem{key: key})
	return ok
}

// ascendFrom visits entries with key >= start in key order until fn returns false.
func (x *sortedIndex) ascendFrom(start string, fn func(keyItem) bool) {
	x.tree.AscendGreaterOrEqual(keyItem{key: start}, fn)
}

func (x *sortedIndex) len() int {
	return x.tree.Len()
}
