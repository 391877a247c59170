package storage

import "github.com/google/btree"

// expiryItem positions an entry in the expiration index. The key breaks ties
// between entries sharing an expiration second.
type expiryItem struct {
	expiration uint64
	key        string
	h          handle
}

// expiryIndex orders expiring entries by (expiration, key). Entries that
// never expire are not stored here.
type expiryIndex struct {
	tree *btree.BTreeG[expiryItem]
}

func newExpiryIndex() *expiryIndex {
	return &expiryIndex{
		tree: btree.NewG(btreeDegree, func(a, b expiryItem) bool {
			if a.expiration != b.expiration {
				return a.expiration < b.expiration
			}
			return a.key < b.key
		}),
	}
}

func (x *expiryIndex) insert(expiration uint64, key string, h handle) {
	x.tree.ReplaceOrInsert(expiryItem{expiration: expiration, key: key, h: h})
}

func (x *expiryIndex) delete(expiration uint64, key string) bool {
	_, ok := x.tree.Delete(expiryItem{expiration: expiration, key: key})
	return ok
}

// earliest returns the entry with the smallest expiration.
func (x *expiryIndex) earliest() (expiryItem, bool) {
	return x.tree.Min()
}

func (x *expiryIndex) len() int {
	return x.tree.Len()
}
