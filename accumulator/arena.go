/*
 * Copyright 2024-2026 Meridian Labs, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package accumulator

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/meridianlabs/shieldpool/rescue"
)

// node is a working-tree node. Child index 0 is the null sentinel; a node with
// no children is terminal and carries a precomputed subtree value (a frontier
// sibling, a fresh leaf, or an empty subtree with value 0).
type node struct {
	val                 fr.Element
	left, middle, right uint64
}

func (n *node) isTerminal() bool {
	return n.left == 0 && n.middle == 0 && n.right == 0
}

type arena struct {
	nodes []node
}

func newArena(height, batch int) *arena {
	hint := (branching+1)*(batch+1) + 2*(branching+1)*height
	a := &arena{nodes: make([]node, 1, hint)}
	return a
}

func (a *arena) alloc(n node) uint64 {
	a.nodes = append(a.nodes, n)
	return uint64(len(a.nodes) - 1)
}

func (a *arena) value(idx uint64) fr.Element {
	if idx == 0 {
		return fr.Element{}
	}
	return a.nodes[idx].val
}

func (a *arena) child(idx uint64, digit uint64) uint64 {
	switch digit {
	case 0:
		return a.nodes[idx].left
	case 1:
		return a.nodes[idx].middle
	default:
		return a.nodes[idx].right
	}
}

func (a *arena) setChild(idx uint64, digit uint64, child uint64) {
	switch digit {
	case 0:
		a.nodes[idx].left = child
	case 1:
		a.nodes[idx].middle = child
	default:
		a.nodes[idx].right = child
	}
}

// buildFromFrontier materializes the spine of the tree from the flattened
// frontier, bottom-up. At each level the frontier contributes the two sibling
// subtree values; the local position of the spine node is the corresponding
// ternary digit of the last inserted uid. An empty frontier yields a bare
// root awaiting its first children.
func (a *arena) buildFromFrontier(frontier []fr.Element, leafCount uint64, height int) uint64 {
	if leafCount == 0 {
		return a.alloc(node{})
	}

	uid := leafCount - 1
	cur := a.alloc(node{val: frontier[0]})

	absPos := uid
	for level := 1; level <= height; level++ {
		s1 := a.alloc(node{val: frontier[2*level-1]})
		s2 := a.alloc(node{val: frontier[2*level]})

		var branch node
		switch absPos % branching {
		case 0:
			branch = node{left: cur, middle: s1, right: s2}
		case 1:
			branch = node{left: s1, middle: cur, right: s2}
		case 2:
			branch = node{left: s1, middle: s2, right: cur}
		}
		cur = a.alloc(branch)
		absPos /= branching
	}

	return cur
}

// push inserts a hashed leaf at the given position, materializing interior
// nodes along the path as needed. Empty-subtree placeholders created by the
// frontier build are populated in place.
func (a *arena) push(rootIdx uint64, pos uint64, leafVal fr.Element, height int) {
	cur := rootIdx
	for level := height; level >= 1; level-- {
		digit := pos / pow3(level-1) % branching
		child := a.child(cur, digit)

		if level == 1 {
			if child == 0 {
				child = a.alloc(node{val: leafVal})
				a.setChild(cur, digit, child)
			} else {
				a.nodes[child].val = leafVal
			}
			return
		}

		if child == 0 {
			child = a.alloc(node{})
			a.setChild(cur, digit, child)
		}
		cur = child
	}
}

// rehash recomputes interior node values post-order; terminal nodes keep
// their precomputed subtree values.
func (a *arena) rehash(rootIdx uint64) {
	type frame struct {
		idx     uint64
		visited bool
	}

	stack := []frame{{idx: rootIdx}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &a.nodes[f.idx]
		if n.isTerminal() {
			continue
		}

		if !f.visited {
			stack = append(stack, frame{idx: f.idx, visited: true})
			for _, c := range []uint64{n.left, n.middle, n.right} {
				if c != 0 {
					stack = append(stack, frame{idx: c})
				}
			}
			continue
		}

		n.val = rescue.Hash3(a.value(n.left), a.value(n.middle), a.value(n.right))
	}
}

// flattenFrontier walks the path of the given uid from the root and records
// the hashed leaf followed by the two sibling values at each level, leaf
// level first.
func (a *arena) flattenFrontier(rootIdx uint64, uid uint64, height int) []fr.Element {
	flattened := make([]fr.Element, 2*height+1)

	cur := rootIdx
	for level := height; level >= 1; level-- {
		digit := pos3(uid, level-1)

		var siblings []uint64
		switch digit {
		case 0:
			siblings = []uint64{a.child(cur, 1), a.child(cur, 2)}
		case 1:
			siblings = []uint64{a.child(cur, 0), a.child(cur, 2)}
		default:
			siblings = []uint64{a.child(cur, 0), a.child(cur, 1)}
		}

		flattened[2*level-1] = a.value(siblings[0])
		flattened[2*level] = a.value(siblings[1])
		cur = a.child(cur, digit)
	}

	flattened[0] = a.value(cur)
	return flattened
}

func pos3(uid uint64, level int) uint64 {
	return uid / pow3(level) % branching
}

// commitFrontier digests the flattened frontier together with the uid it
// represents. The digest guards persisted state integrity between updates;
// it is not circuit-visible and deliberately uses a byte-oriented hash.
func commitFrontier(frontier []fr.Element, uid uint64) [32]byte {
	digest := sha256.New()
	digest.Write([]byte("shieldpool.frontier.v1"))

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uid)
	digest.Write(buf[:])

	for i := range frontier {
		b := frontier[i].Bytes()
		digest.Write(b[:])
	}

	var out [32]byte
	copy(out[:], digest.Sum(nil))
	return out
}
