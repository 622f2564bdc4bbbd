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
	"fmt"

	"github.com/bytedance/gopkg/lang/mcache"
	"github.com/cloudwego/kernsel/internal/defs"
)

// Candidate is one fully compiled kernel variant for a specific SIMD width.
// The program buffer is owned by the candidate until Release is called.
type Candidate struct {
	SIMD      defs.SIMDMode
	SpillCost float32
	SpillSize uint32
	InstCount uint32
	program   []byte
}

// NewCandidate copies the serialized program into a buffer owned by the
// returned candidate.
func NewCandidate(simd defs.SIMDMode, spillCost float32, spillSize uint32, program []byte) *Candidate {
	ret := &Candidate{
		SIMD:      simd.Must(),
		SpillCost: spillCost,
		SpillSize: spillSize,
	}

	/* copy the program if any */
	if len(program) != 0 {
		ret.program = mcache.Malloc(len(program))
		copy(ret.program, program)
	}
	return ret
}

// Program returns the serialized program, which is nil after Release.
func (self *Candidate) Program() []byte {
	return self.program
}

// Spills reports whether the register allocator had to spill anything.
func (self *Candidate) Spills() bool {
	return self.SpillSize != 0
}

// Released reports whether the program buffer has been freed.
func (self *Candidate) Released() bool {
	return self.program == nil
}

// Release frees the program buffer. Calling it more than once is fine.
func (self *Candidate) Release() {
	if self.program != nil {
		mcache.Free(self.program)
		self.program = nil
	}
}

func (self *Candidate) String() string {
	return fmt.Sprintf(
		"%s { spill_cost = %.4f, spill_size = %d, inst_count = %d, program = %d bytes }",
		self.SIMD,
		self.SpillCost,
		self.SpillSize,
		self.InstCount,
		len(self.program),
	)
}
