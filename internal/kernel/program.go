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

package kernel

import (
	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/cloudwego/kernsel/internal/defs"
)

// Program is the shipped form of a selected kernel.
type Program struct {
	SIMD      defs.SIMDMode
	SpillCost float32
	SpillSize uint32
	Binary    []byte
}

// ProgramOutput holds one program slot per SIMD width, and remembers which of
// them was selected.
type ProgramOutput struct {
	Slots    [defs.NumSIMDModes]*Program
	Selected defs.SIMDMode
}

// Fill copies the candidate into its SIMD slot and marks it as selected.
func (self *ProgramOutput) Fill(c *Candidate) {
	buf := c.Program()
	bin := dirtmake.Bytes(len(buf), len(buf))

	/* the output must survive the candidate */
	copy(bin, buf)
	self.Selected = c.SIMD
	self.Slots[c.SIMD.Index()] = &Program{
		SIMD:      c.SIMD,
		SpillCost: c.SpillCost,
		SpillSize: c.SpillSize,
		Binary:    bin,
	}
}

// Program returns the selected program, or nil if nothing was selected.
func (self *ProgramOutput) Program() *Program {
	if !self.Selected.IsValid() {
		return nil
	} else {
		return self.Slots[self.Selected.Index()]
	}
}
