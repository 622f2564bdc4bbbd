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

package retry

import (
	"fmt"

	"github.com/cloudwego/kernsel/internal/cost"
	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/kernel"
)

// Context is the code generation context of the kernel being compiled.
type Context struct {
	Type   defs.ShaderType
	CS     *cost.CSContext
	Output kernel.ProgramOutput
}

// PickupKernels tries to select the kernel to ship out of the candidates of
// the current retry state. It returns false when no decision can be made
// yet, in which case the caller should advance the state and recompile.
func (self *Manager) PickupKernels(ctx *Context) bool {
	if self.picked {
		return true
	}

	/* only compute shaders have a selection policy */
	switch ctx.Type {
	case defs.ComputeShader:
		return self.pickupCS(ctx)
	default:
		panic(fmt.Sprintf("retry: kernel pickup for %s shaders is not implemented", ctx.Type))
	}
}

func (self *Manager) pickupCS(ctx *Context) bool {
	simd, c := self.pickCSEntryForcedFromDriver(defs.FromLanes(self.opts.ForcedSIMD))

	/* try every policy in order */
	if c == nil {
		simd, c = self.pickCSEntryByRegKey()
	}
	if c == nil {
		simd, c = self.pickCSEntryEarly(ctx.CS)
	}
	if c == nil && self.IsLastTry() {
		simd, c = self.pickCSEntryFinally()
	}

	/* no decision for this state */
	if c == nil {
		return false
	}

	/* ship the selected kernel and drop the rest */
	ctx.Output.Fill(c)
	self.freeAllocatedMemForNotPickedCS(simd)
	self.picked = true
	recordPick(simd, c.SpillCost)
	return true
}

func (self *Manager) pickCSEntryForcedFromDriver(simd defs.SIMDMode) (defs.SIMDMode, *kernel.Candidate) {
	if !simd.IsValid() {
		return defs.SIMDUnknown, nil
	} else if c := self.entries[simd.Index()]; c == nil {
		return defs.SIMDUnknown, nil
	} else {
		return simd, c
	}
}

func (self *Manager) pickCSEntryByRegKey() (defs.SIMDMode, *kernel.Candidate) {
	if self.opts.ForceSIMD32 {
		return self.pickCSEntryForcedFromDriver(defs.SIMD32)
	} else if self.opts.ForceSIMD16 && self.entries[1] != nil {
		return defs.SIMD16, self.entries[1]
	} else if self.opts.ForceLeastSIMD {
		return self.pickCSEntryFinally()
	} else {
		return defs.SIMDUnknown, nil
	}
}

func (self *Manager) pickCSEntryEarly(ctx *cost.CSContext) (defs.SIMDMode, *kernel.Candidate) {
	e8, e16, e32 := self.entries[0], self.entries[1], self.entries[2]
	spill := ctx.SpillThreshold(&self.opts)

	/* occupancy of every width */
	occu8 := ctx.Occupancy(defs.SIMD8)
	occu16 := ctx.Occupancy(defs.SIMD16)
	occu32 := ctx.Occupancy(defs.SIMD32)

	/* which widths stay within the spill budget */
	noSpill8 := e8 != nil && e8.SpillCost <= spill
	noSpill16 := e16 != nil && e16.SpillCost <= spill
	noSpill32 := e32 != nil && e32.SpillCost <= spill

	/* pick the widest width that does not spill */
	if self.opts.PreferHighestSIMD {
		if noSpill32 {
			return defs.SIMD32, e32
		}
		if noSpill16 {
			return defs.SIMD16, e16
		}
	} else {
		if noSpill32 {
			if occu32 >= occu16 && occu32 >= occu8 {
				return defs.SIMD32, e32
			}
			if (e8 != nil && !noSpill8) || (e16 != nil && !noSpill16) {
				panic("retry: SIMD32 does not spill while a narrower width does")
			}
		}
		if noSpill16 {
			if occu16 >= occu8 {
				return defs.SIMD16, e16
			}
			if e8 != nil && !noSpill8 {
				panic("retry: SIMD16 does not spill while SIMD8 does")
			}
		}
	}

	/* a narrower width might improve occupancy with SLM, give it another try */
	retry := false
	if ctx.UsesSLM() && (occu16 > occu8 || occu32 > occu16) {
		retry = true
	}

	/* settle on SIMD8 if it does not spill at all */
	if ctx.Least() == defs.SIMD8 || !retry {
		if e8 != nil && e8.SpillSize == 0 {
			return defs.SIMD8, e8
		}
	}

	/* no decision */
	return defs.SIMDUnknown, nil
}

func (self *Manager) pickCSEntryFinally() (defs.SIMDMode, *kernel.Candidate) {
	for i, c := range self.entries {
		if c != nil {
			return defs.SIMDModes[i], c
		}
	}
	return defs.SIMDUnknown, nil
}

func (self *Manager) freeAllocatedMemForNotPickedCS(simd defs.SIMDMode) {
	for i, c := range self.entries {
		if c != nil && defs.SIMDModes[i] != simd {
			c.Release()
		}
	}
}
