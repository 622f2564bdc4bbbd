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

	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/kernel"
	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/davecgh/go-spew/spew"
)

// Manager drives the recompilation of one kernel. It walks the retry states,
// keeps at most one candidate per SIMD width, and picks the one to ship.
//
// A Manager is not safe for concurrent use, each kernel compilation owns its
// own instance.
type Manager struct {
	opts      opts.Options
	enabled   bool
	picked    bool
	state     int
	first     int
	spillSize uint32
	entries   [defs.NumSIMDModes]*kernel.Candidate
}

// New creates a disabled manager positioned at the configured first state.
func New(o opts.Options) *Manager {
	if o.FirstState < 0 || o.FirstState >= NumStates() {
		panic(fmt.Sprintf("retry: invalid first retry state: %d", o.FirstState))
	}

	/* construct the manager */
	return &Manager{
		opts:  o,
		state: o.FirstState,
		first: o.FirstState,
	}
}

func (self *Manager) Enable()       { self.enabled = true }
func (self *Manager) Disable()      { self.enabled = false }
func (self *Manager) Enabled() bool { return self.enabled }
func (self *Manager) RetryID() int  { return self.state }

func (self *Manager) canRetry() bool {
	return self.enabled && !self.opts.DisableRecompilation
}

func (self *Manager) terminal() bool {
	return self.state >= NumStates()
}

// AdvanceState moves to the next retry state, and reports whether another
// attempt should be made.
func (self *Manager) AdvanceState() bool {
	if !self.canRetry() || self.terminal() {
		return false
	}

	/* move to the next state */
	self.state = _Profiles[self.state].Next
	if self.terminal() {
		return false
	}

	/* a new attempt is coming */
	atomicInc(&AdvanceCount)
	return true
}

func (self *Manager) IsFirstTry() bool {
	return self.state == self.first
}

// IsLastTry reports whether the current attempt is the final one.
func (self *Manager) IsLastTry() bool {
	return !self.canRetry() || self.terminal() || _Profiles[self.state].Next >= NumStates()
}

// Profile returns the optimization profile of the current state.
func (self *Manager) Profile() Profile {
	return ProfileOf(self.state)
}

func (self *Manager) AllowUnroll() bool               { return self.Profile().AllowUnroll }
func (self *Manager) AllowLICM() bool                 { return self.Profile().AllowLICM }
func (self *Manager) AllowCodeSinking() bool          { return self.Profile().AllowCodeSinking }
func (self *Manager) AllowSimd32Slicing() bool        { return self.Profile().AllowSimd32Slicing }
func (self *Manager) AllowPromotePrivateMemory() bool { return self.Profile().AllowPromotePrivateMemory }
func (self *Manager) AllowPreRAScheduler() bool       { return self.Profile().AllowPreRAScheduler }
func (self *Manager) AllowLargeURBWrite() bool        { return self.Profile().AllowLargeURBWrite }

func (self *Manager) SetSpillSize(n uint32) { self.spillSize = n }
func (self *Manager) LastSpillSize() uint32 { return self.spillSize }

// ClearSpillParams forgets the statistics of the previous attempt.
func (self *Manager) ClearSpillParams() {
	self.spillSize = 0
}

// IsBetterThanPrevious reports whether c improves on the spill size recorded
// by SetSpillSize, scaled by threshold.
func (self *Manager) IsBetterThanPrevious(c *kernel.Candidate, threshold float32) bool {
	if self.spillSize == 0 {
		return c.SpillSize == 0
	} else {
		return float32(c.SpillSize) < float32(self.spillSize)*threshold
	}
}

// SaveSIMDEntry stores the candidate of a SIMD width, releasing any
// candidate it replaces.
func (self *Manager) SaveSIMDEntry(simd defs.SIMDMode, c *kernel.Candidate) {
	idx := simd.Index()
	old := self.entries[idx]

	/* selection is final */
	if self.picked {
		panic("retry: saving a candidate after the kernel is picked")
	}

	/* a width may be compiled again in a later state */
	if old != nil && old != c {
		old.Release()
	}

	/* store the new entry */
	self.entries[idx] = c
}

// GetSIMDEntry returns the stored candidate of a SIMD width, or nil.
func (self *Manager) GetSIMDEntry(simd defs.SIMDMode) *kernel.Candidate {
	return self.entries[simd.Index()]
}

// AnyKernelSpills reports whether any stored candidate has a spill cost.
func (self *Manager) AnyKernelSpills() bool {
	for _, c := range self.entries {
		if c != nil && c.SpillCost > 0 {
			return true
		}
	}
	return false
}

// Close releases every stored candidate. The manager must not be used
// afterwards.
func (self *Manager) Close() {
	for i, c := range self.entries {
		if c != nil {
			c.Release()
			self.entries[i] = nil
		}
	}
}

// Dump returns a human readable representation of the manager state.
func (self *Manager) Dump() string {
	cfg := spew.ConfigState{
		Indent:                  "    ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	return cfg.Sdump(self)
}
