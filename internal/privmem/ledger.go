/*
 * Copyright 2024 CloudWeGo Authors
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

package privmem

import (
	"github.com/cloudwego/kernsel/internal/rpe"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/btree"
	"github.com/llir/llvm/ir"
)

const (
	_BTreeDegree = 8
)

// Estimator is the register pressure information the promotion policy
// consults.
type Estimator interface {
	Available() bool
	AssignedNumber(ins ir.Instruction) (uint, bool)
	BlockRange(bb *ir.Block) rpe.Range
	Pressure(bb *ir.Block) uint
}

type _Span struct {
	rpe.Range
	bb *ir.Block
}

func spanLess(a _Span, b _Span) bool {
	return a.Lo < b.Lo
}

// Ledger tracks the register pressure of every basic block of one function,
// in bytes. The first query of a block seeds it from the estimator, every
// accepted promotion then adds to it. Entries never decrease.
type Ledger struct {
	est   Estimator
	order []*ir.Block
	spans *btree.BTreeG[_Span]
	bytes map[*ir.Block]uint
}

// NewLedger creates an empty ledger for fn.
func NewLedger(fn *ir.Func, est Estimator) *Ledger {
	ret := &Ledger{
		est:   est,
		order: fn.Blocks,
		spans: btree.NewG[_Span](_BTreeDegree, spanLess),
		bytes: make(map[*ir.Block]uint, len(fn.Blocks)),
	}

	/* index the blocks by their program point spans */
	if est.Available() {
		for _, bb := range fn.Blocks {
			ret.spans.ReplaceOrInsert(_Span{Range: est.BlockRange(bb), bb: bb})
		}
	}
	return ret
}

// Overlapping returns every block whose span shares a program point with
// [lo, hi], in program order.
func (self *Ledger) Overlapping(lo uint, hi uint) []*ir.Block {
	var ret []*ir.Block
	var start _Span

	/* empty range */
	if lo > hi {
		return nil
	}

	/* find the block that contains lo, or the first one */
	if first, ok := self.spans.Min(); ok {
		start = first
	}
	self.spans.DescendLessOrEqual(_Span{Range: rpe.Range{Lo: lo}}, func(v _Span) bool {
		start = v
		return false
	})

	/* walk forward until the spans start after hi */
	self.spans.AscendGreaterOrEqual(start, func(v _Span) bool {
		if v.Lo > hi {
			return false
		}
		if v.Overlaps(lo, hi) {
			ret = append(ret, v.bb)
		}
		return true
	})
	return ret
}

// At returns the current pressure of bb, seeding it from the estimator on
// first access.
func (self *Ledger) At(bb *ir.Block) uint {
	if v, ok := self.bytes[bb]; ok {
		return v
	}

	/* first access */
	v := self.est.Pressure(bb)
	self.bytes[bb] = v
	return v
}

// Peek returns the current pressure of bb without seeding it.
func (self *Ledger) Peek(bb *ir.Block) (uint, bool) {
	v, ok := self.bytes[bb]
	return v, ok
}

// Reserve adds n bytes to the pressure of bb.
func (self *Ledger) Reserve(bb *ir.Block, n uint) {
	self.bytes[bb] = self.At(bb) + n
}

// Dump returns a human readable representation of every seeded entry.
func (self *Ledger) Dump() string {
	ret := make(map[string]uint, len(self.bytes))
	for _, bb := range self.order {
		if v, ok := self.bytes[bb]; ok {
			ret[bb.Ident()] = v
		}
	}

	/* sorted by block name */
	cfg := spew.ConfigState{Indent: "    ", SortKeys: true}
	return cfg.Sdump(ret)
}
