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
	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/cloudwego/kernsel/internal/rpe"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

type fakeEstimator struct {
	numbers  map[ir.Instruction]uint
	ranges   map[*ir.Block]rpe.Range
	pressure map[*ir.Block]uint
	queries  map[*ir.Block]int
}

func newFakeEstimator() *fakeEstimator {
	return &fakeEstimator{
		numbers:  make(map[ir.Instruction]uint),
		ranges:   make(map[*ir.Block]rpe.Range),
		pressure: make(map[*ir.Block]uint),
		queries:  make(map[*ir.Block]int),
	}
}

func (self *fakeEstimator) Available() bool {
	return true
}

func (self *fakeEstimator) AssignedNumber(ins ir.Instruction) (uint, bool) {
	n, ok := self.numbers[ins]
	return n, ok
}

func (self *fakeEstimator) BlockRange(bb *ir.Block) rpe.Range {
	return self.ranges[bb]
}

func (self *fakeEstimator) Pressure(bb *ir.Block) uint {
	self.queries[bb]++
	return self.pressure[bb]
}

func (self *fakeEstimator) at(n uint) ir.Instruction {
	ins := ir.NewAdd(constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
	self.numbers[ins] = n
	return ins
}

// linearFunc creates n blocks of three program points each.
func linearFunc(n int, est *fakeEstimator) (*ir.Func, []*ir.Block) {
	fn := ir.NewModule().NewFunc("kernel", types.Void)
	ret := make([]*ir.Block, n)
	for i := range ret {
		ret[i] = fn.NewBlock(string(rune('a' + i)))
		est.ranges[ret[i]] = rpe.Range{Lo: uint(i * 3), Hi: uint(i*3 + 2)}
	}
	return fn, ret
}

func (self *fakeEstimator) usesOver(lo uint, hi uint) []ir.Instruction {
	return []ir.Instruction{self.at(lo), self.at(hi)}
}

func testOptions() opts.Options {
	return opts.Options{SpillThresholdNoSLM: 1}
}
