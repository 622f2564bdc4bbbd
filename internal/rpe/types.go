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
	"math"
	"math/bits"

	"github.com/llir/llvm/ir/types"
)

// MaxSize is what every size saturates to instead of wrapping around.
const MaxSize = math.MaxUint64

// MulSize multiplies two sizes, saturating at MaxSize.
func MulSize(a uint64, b uint64) uint64 {
	if hi, lo := bits.Mul64(a, b); hi != 0 {
		return MaxSize
	} else {
		return lo
	}
}

// AddSize adds two sizes, saturating at MaxSize.
func AddSize(a uint64, b uint64) uint64 {
	if sum, carry := bits.Add64(a, b, 0); carry != 0 {
		return MaxSize
	} else {
		return sum
	}
}

// SizeOf returns the storage size of an IR type in bytes. Types that never
// occupy registers have zero size, and sizes too large to represent are
// MaxSize.
func SizeOf(t types.Type) uint64 {
	switch v := t.(type) {
	case *types.IntType:
		return v.BitSize/8 + min(v.BitSize%8, 1)
	case *types.FloatType:
		return floatSize(v.Kind)
	case *types.PointerType:
		return 8
	case *types.VectorType:
		return MulSize(v.Len, SizeOf(v.ElemType))
	case *types.ArrayType:
		return MulSize(v.Len, SizeOf(v.ElemType))
	case *types.StructType:
		return structSize(v)
	default:
		return 0
	}
}

func floatSize(kind types.FloatKind) uint64 {
	switch kind {
	case types.FloatKindHalf:
		return 2
	case types.FloatKindFloat:
		return 4
	case types.FloatKindDouble:
		return 8
	default:
		return 16
	}
}

func structSize(t *types.StructType) uint64 {
	ret := uint64(0)
	for _, f := range t.Fields {
		ret = AddSize(ret, SizeOf(f))
	}
	return ret
}
