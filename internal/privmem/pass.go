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
	"github.com/llir/llvm/ir"
)

// Allocas returns every alloca of fn in program order.
func Allocas(fn *ir.Func) []*ir.InstAlloca {
	var ret []*ir.InstAlloca
	for _, bb := range fn.Blocks {
		for _, ins := range bb.Insts {
			if a, ok := ins.(*ir.InstAlloca); ok {
				ret = append(ret, a)
			}
		}
	}
	return ret
}

// Promote runs the policy over every alloca of the function it was created
// for, and returns the decisions in program order.
func Promote(p *Policy) []Decision {
	allocas := Allocas(p.fn)
	ret := make([]Decision, 0, len(allocas))

	/* decisions depend on the ones made before */
	for _, a := range allocas {
		ret = append(ret, p.CheckIfAllocaPromotable(a))
	}
	return ret
}

// Promoted filters the accepted allocas out of ds.
func Promoted(ds []Decision) []*ir.InstAlloca {
	var ret []*ir.InstAlloca
	for _, d := range ds {
		if d.Accepted {
			ret = append(ret, d.Alloca)
		}
	}
	return ret
}
