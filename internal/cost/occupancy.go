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

package cost

import (
	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/opts"
)

const (
	DefaultNumGRF = 128 // GRFs per hardware thread in the default register file mode
)

// CSContext describes the dispatch environment of one compute kernel.
type CSContext struct {
	GroupX         int
	GroupY         int
	GroupZ         int
	HWThreadsPerWG int // hardware threads a sub-slice can give to work-groups
	SLMSize        int // bytes of shared local memory used by one work-group
	SLMPerSubslice int // bytes of shared local memory per sub-slice
	NumGRF         int // hardware GRFs per thread, 0 means DefaultNumGRF
	LeastSIMD      defs.SIMDMode
	MaxSIMD        defs.SIMDMode
}

// ThreadGroupSize returns the number of work-items in a work-group.
func (self *CSContext) ThreadGroupSize() int {
	return max(self.GroupX, 1) * max(self.GroupY, 1) * max(self.GroupZ, 1)
}

// UsesSLM reports whether the kernel uses any shared local memory.
func (self *CSContext) UsesSLM() bool {
	return self.SLMSize != 0
}

// Least returns the narrowest SIMD mode the dispatch allows.
func (self *CSContext) Least() defs.SIMDMode {
	if self.LeastSIMD.IsValid() {
		return self.LeastSIMD
	} else {
		return defs.SIMD8
	}
}

// Max returns the widest SIMD mode the dispatch allows.
func (self *CSContext) Max() defs.SIMDMode {
	if self.MaxSIMD.IsValid() {
		return self.MaxSIMD
	} else {
		return defs.SIMD32
	}
}

// Allowed returns every SIMD mode between Least and Max, narrowest first.
func (self *CSContext) Allowed() []defs.SIMDMode {
	lo, hi := self.Least(), self.Max()
	ret := make([]defs.SIMDMode, 0, defs.NumSIMDModes)

	/* collect the modes within range */
	for _, m := range defs.SIMDModes {
		if m >= lo && m <= hi {
			ret = append(ret, m)
		}
	}
	return ret
}

// SpillThreshold returns the tolerated spill cost, which depends on whether
// the kernel uses SLM.
func (self *CSContext) SpillThreshold(o *opts.Options) float32 {
	return o.SpillThreshold(self.UsesSLM())
}

// GRFRatio scales register budgets relative to the 128-GRF baseline.
func (self *CSContext) GRFRatio(o *opts.Options) float32 {
	return GRFRatio(o, self.NumGRF)
}

// GRFRatio is the number of GRFs available on hw, after the overrides of o,
// relative to the 128-GRF baseline. A zero hw means DefaultNumGRF.
func GRFRatio(o *opts.Options, hw int) float32 {
	if hw == 0 {
		hw = DefaultNumGRF
	}
	return float32(o.NumGRF(hw)) / float32(DefaultNumGRF)
}

// Occupancy returns the fraction of the sub-slice hardware threads that can
// be kept busy when the kernel is dispatched with the given SIMD mode.
func (self *CSContext) Occupancy(simd defs.SIMDMode) float32 {
	return ThreadOccupancy(simd, self.ThreadGroupSize(), self.HWThreadsPerWG, self.SLMSize, self.SLMPerSubslice)
}

// ThreadOccupancy computes how many hardware threads of a sub-slice are
// occupied by as many work-groups as fit, both by thread count and by shared
// local memory.
func ThreadOccupancy(simd defs.SIMDMode, groupSize int, hwThreads int, slmSize int, slmPerSubslice int) float32 {
	lanes := simd.Lanes()
	threads := (groupSize + lanes - 1) / lanes

	/* nothing can be dispatched */
	if hwThreads <= 0 || threads <= 0 {
		return 0
	}

	/* work-groups that fit by thread count, then by SLM */
	groups := hwThreads / threads
	if slmSize > 0 {
		groups = min(groups, slmPerSubslice/slmSize)
	}

	/* fraction of threads in use */
	return float32(groups*threads) / float32(hwThreads)
}
