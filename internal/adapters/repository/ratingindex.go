package repository

import "math/rand/v2"

// ratingIndex is a treap ordered by rating DESC, then player id ASC, so an
// in-order walk yields the leaderboard from best to worst. Subtree sizes
// make rank queries logarithmic.
type ratingIndex struct {
	root *ratingNode
}

type ratingNode struct {
	id     string
	rating int
	prio   uint64
	left   *ratingNode
	right  *ratingNode
	size   int
}

type indexEntry struct {
	id     string
	rating int
}

func nsize(n *ratingNode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *ratingNode) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// before reports whether (aRating, aID) ranks ahead of (bRating, bID).
func before(aRating int, aID string, bRating int, bID string) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aID < bID
}

func rotateRight(y *ratingNode) *ratingNode {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *ratingNode) *ratingNode {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insertNode(n *ratingNode, id string, rating int) *ratingNode {
	if n == nil {
		return &ratingNode{id: id, rating: rating, prio: rand.Uint64(), size: 1}
	}
	if before(rating, id, n.rating, n.id) {
		n.left = insertNode(n.left, id, rating)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insertNode(n.right, id, rating)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *ratingNode, id string, rating int) *ratingNode {
	if n == nil {
		return nil
	}
	switch {
	case rating == n.rating && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, rating)
		}
	case before(rating, id, n.rating, n.id):
		n.left = deleteNode(n.left, id, rating)
	default:
		n.right = deleteNode(n.right, id, rating)
	}
	fix(n)
	return n
}

func collectTop(n *ratingNode, limit int, out *[]indexEntry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTop(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, indexEntry{id: n.id, rating: n.rating})
	}
	if len(*out) < limit {
		collectTop(n.right, limit, out)
	}
}

func (ix *ratingIndex) insert(id string, rating int) {
	ix.root = insertNode(ix.root, id, rating)
}

func (ix *ratingIndex) update(id string, from, to int) {
	if from == to {
		return
	}
	ix.root = deleteNode(ix.root, id, from)
	ix.root = insertNode(ix.root, id, to)
}

func (ix *ratingIndex) len() int {
	return nsize(ix.root)
}

func (ix *ratingIndex) top(limit int) []indexEntry {
	out := make([]indexEntry, 0, min(limit, ix.len()))
	collectTop(ix.root, limit, &out)
	return out
}

// higherThan counts entries with a rating strictly above rating.
func (ix *ratingIndex) higherThan(rating int) int {
	count := 0
	for n := ix.root; n != nil; {
		if n.rating > rating {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}
