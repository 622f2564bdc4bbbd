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
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const (
	_UniformMeta = "uniform"
)

// AllocaSize returns the size of the private memory reserved by a, which
// must have a constant element count.
func AllocaSize(a *ir.InstAlloca) (uint64, bool) {
	n := uint64(1)
	size := rpe.SizeOf(a.ElemType)

	/* scalar alloca */
	if a.NElems == nil {
		return size, true
	}

	/* array alloca, the count must be a constant */
	if c, ok := a.NElems.(*constant.Int); !ok || !c.X.IsUint64() {
		return 0, false
	} else {
		n = c.X.Uint64()
	}

	/* total size, too large ones saturate */
	return rpe.MulSize(n, size), true
}

// MetadataUniform tells whether an alloca carries the uniform annotation.
func MetadataUniform(a *ir.InstAlloca) bool {
	for _, md := range a.Metadata {
		if md.Name == _UniformMeta {
			return true
		}
	}
	return false
}

// divCeil divides v by n rounding up, without overflowing near the top of
// the range.
func divCeil(v uint64, n uint64) uint64 {
	return v/n + min(v%n, 1)
}

func usesValue(ops []*value.Value, v value.Value) bool {
	for _, p := range ops {
		if *p == v {
			return true
		}
	}
	return false
}

// users returns every instruction of fn that takes v as an operand, and
// whether any terminator does.
func users(fn *ir.Func, v value.Value) (ret []ir.Instruction, term bool) {
	for _, bb := range fn.Blocks {
		for _, ins := range bb.Insts {
			if usesValue(ins.Operands(), v) {
				ret = append(ret, ins)
			}
		}
		if bb.Term != nil && usesValue(bb.Term.Operands(), v) {
			term = true
		}
	}
	return
}

func scalarOf(t types.Type) types.Type {
	if vt, ok := t.(*types.VectorType); ok {
		return vt.ElemType
	} else {
		return t
	}
}

// derivedUsers collects the users of v and of every pointer derived from it.
func derivedUsers(fn *ir.Func, v value.Value) []ir.Instruction {
	uses, _ := users(fn, v)
	ret := append([]ir.Instruction(nil), uses...)

	/* follow address computations */
	for _, u := range uses {
		switch ins := u.(type) {
		case *ir.InstGetElementPtr:
			ret = append(ret, derivedUsers(fn, ins)...)
		case *ir.InstBitCast:
			ret = append(ret, derivedUsers(fn, ins)...)
		}
	}
	return ret
}
