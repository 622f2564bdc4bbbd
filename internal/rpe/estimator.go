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

package rpe

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/oleiade/lane"
)

// Range is the span of program point numbers assigned to a basic block, both
// ends inclusive. The terminator takes the last number.
type Range struct {
	Lo uint
	Hi uint
}

// Overlaps reports whether the two ranges share any program point.
func (self Range) Overlaps(lo uint, hi uint) bool {
	return self.Lo <= hi && lo <= self.Hi
}

// UniformFunc tells whether a value is the same across all SIMD lanes.
type UniformFunc func(v value.Value) bool

// Estimator estimates the register pressure of every basic block of a
// function, in bytes, for a given SIMD width.
type Estimator struct {
	fn       *ir.Func
	lanes    uint64
	uniform  UniformFunc
	numbers  map[ir.Instruction]uint
	ranges   map[*ir.Block]Range
	liveIn   map[*ir.Block]valueSet
	liveOut  map[*ir.Block]valueSet
	pressure map[*ir.Block]uint
}

// Unavailable returns an estimator that has no information at all.
func Unavailable() *Estimator {
	return new(Estimator)
}

// New numbers every instruction of fn in block order and runs the liveness
// analysis. A nil uniform function treats every value as varying.
func New(fn *ir.Func, lanes int, uniform UniformFunc) *Estimator {
	ret := &Estimator{
		fn:       fn,
		lanes:    uint64(lanes),
		uniform:  uniform,
		numbers:  make(map[ir.Instruction]uint),
		ranges:   make(map[*ir.Block]Range, len(fn.Blocks)),
		liveIn:   make(map[*ir.Block]valueSet, len(fn.Blocks)),
		liveOut:  make(map[*ir.Block]valueSet, len(fn.Blocks)),
		pressure: make(map[*ir.Block]uint, len(fn.Blocks)),
	}

	/* declarations have nothing to estimate */
	if len(fn.Blocks) == 0 {
		ret.fn = nil
		return ret
	}

	/* run the analysis */
	ret.number()
	ret.liveness()
	return ret
}

// Available reports whether the estimator has pressure information.
func (self *Estimator) Available() bool {
	return self.fn != nil
}

// AssignedNumber returns the program point number of an instruction.
func (self *Estimator) AssignedNumber(ins ir.Instruction) (uint, bool) {
	n, ok := self.numbers[ins]
	return n, ok
}

// BlockRange returns the program point numbers spanned by a block.
func (self *Estimator) BlockRange(bb *ir.Block) Range {
	return self.ranges[bb]
}

// Pressure returns the maximum number of live bytes at any point of bb.
func (self *Estimator) Pressure(bb *ir.Block) uint {
	if !self.Available() {
		return 0
	} else if p, ok := self.pressure[bb]; ok {
		return p
	}

	/* compute and cache */
	p := self.blockPressure(bb)
	self.pressure[bb] = p
	return p
}

func (self *Estimator) number() {
	n := uint(0)
	for _, bb := range self.fn.Blocks {
		lo := n
		for _, ins := range bb.Insts {
			self.numbers[ins] = n
			n++
		}
		self.ranges[bb] = Range{Lo: lo, Hi: n}
		n++
	}
}

func (self *Estimator) tracked(v value.Value) bool {
	if _, ok := v.(ir.Instruction); !ok {
		return false
	} else if _, ok = v.(*ir.InstAlloca); ok {
		return false
	} else {
		return !types.Equal(v.Type(), types.Void)
	}
}

func (self *Estimator) operands(ops []*value.Value, fn func(v value.Value)) {
	for _, p := range ops {
		if *p != nil && self.tracked(*p) {
			fn(*p)
		}
	}
}

func (self *Estimator) defines(ins ir.Instruction) (value.Value, bool) {
	if v, ok := ins.(value.Value); ok && self.tracked(v) {
		return v, true
	} else {
		return nil, false
	}
}

func (self *Estimator) useDef(bb *ir.Block) (use valueSet, def valueSet) {
	use = make(valueSet)
	def = make(valueSet)

	/* upward exposed uses and definitions */
	record := func(v value.Value) {
		if _, ok := def[v]; !ok {
			use.add(v)
		}
	}

	/* scan every instruction */
	for _, ins := range bb.Insts {
		self.operands(ins.Operands(), record)
		if v, ok := self.defines(ins); ok {
			def.add(v)
		}
	}

	/* the terminator only uses values */
	if bb.Term != nil {
		self.operands(bb.Term.Operands(), record)
	}
	return
}

func (self *Estimator) liveness() {
	q := lane.NewQueue()
	use := make(map[*ir.Block]valueSet, len(self.fn.Blocks))
	def := make(map[*ir.Block]valueSet, len(self.fn.Blocks))
	pred := make(map[*ir.Block][]*ir.Block, len(self.fn.Blocks))

	/* local sets and predecessors */
	for _, bb := range self.fn.Blocks {
		use[bb], def[bb] = self.useDef(bb)
		self.liveIn[bb] = use[bb].clone()
		self.liveOut[bb] = make(valueSet)
		if bb.Term != nil {
			for _, succ := range bb.Term.Succs() {
				pred[succ] = append(pred[succ], bb)
			}
		}
	}

	/* seed the worklist backwards, which converges faster */
	for i := len(self.fn.Blocks) - 1; i >= 0; i-- {
		q.Enqueue(self.fn.Blocks[i])
	}

	/* iterate until nothing changes */
	for !q.Empty() {
		bb := q.Dequeue().(*ir.Block)
		out := self.liveOut[bb]

		/* live-out{p} = ∪ live-in{succ(p)} */
		if bb.Term != nil {
			for _, succ := range bb.Term.Succs() {
				out.union(self.liveIn[succ])
			}
		}

		/* live-in{p} = use{p} ∪ (live-out{p} - def{p}) */
		in := out.clone()
		for v := range def[bb] {
			in.remove(v)
		}

		/* propagate to predecessors if changed */
		if self.liveIn[bb].union(in) {
			for _, p := range pred[bb] {
				q.Enqueue(p)
			}
		}
	}
}

func (self *Estimator) sizeOf(v value.Value) uint64 {
	if self.uniform != nil && self.uniform(v) {
		return SizeOf(v.Type())
	} else {
		return MulSize(SizeOf(v.Type()), self.lanes)
	}
}

func (self *Estimator) bytes(vs valueSet) uint64 {
	ret := uint64(0)
	for v := range vs {
		ret = AddSize(ret, self.sizeOf(v))
	}
	return ret
}

func (self *Estimator) blockPressure(bb *ir.Block) uint {
	out, ok := self.liveOut[bb]
	if !ok {
		return 0
	}

	/* scan the block backwards from its live-out set */
	live := out.clone()
	add := func(v value.Value) { live.add(v) }
	if bb.Term != nil {
		self.operands(bb.Term.Operands(), add)
	}

	/* the maximum over every program point */
	peak := self.bytes(live)
	for i := len(bb.Insts) - 1; i >= 0; i-- {
		if v, ok := self.defines(bb.Insts[i]); ok {
			live.remove(v)
		}
		self.operands(bb.Insts[i].Operands(), add)
		if n := self.bytes(live); n > peak {
			peak = n
		}
	}
	return uint(peak)
}
