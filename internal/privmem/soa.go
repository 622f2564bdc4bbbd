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
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const (
	_LifetimePrefix = "llvm.lifetime."
)

// Legality decides whether an alloca can be laid out as a structure of
// arrays in registers, and returns its base element type if so.
type Legality interface {
	CanUseSOALayout(fn *ir.Func, a *ir.InstAlloca) (types.Type, bool)
}

// SOALayout is the default legality check. The alloca must reduce to a
// single integer or floating point element type, and must only be accessed
// by loads and stores of that type, through GEPs and bitcasts, or by
// lifetime markers.
type SOALayout struct{}

func (SOALayout) CanUseSOALayout(fn *ir.Func, a *ir.InstAlloca) (types.Type, bool) {
	if base, ok := baseType(a.ElemType); !ok {
		return nil, false
	} else if !accessedAs(fn, a, base) {
		return nil, false
	} else {
		return base, true
	}
}

func baseType(t types.Type) (types.Type, bool) {
	for {
		switch v := t.(type) {
		case *types.ArrayType:
			t = v.ElemType
		case *types.VectorType:
			t = v.ElemType
		case *types.StructType:
			if len(v.Fields) != 1 {
				return nil, false
			}
			t = v.Fields[0]
		case *types.IntType, *types.FloatType:
			return t, true
		default:
			return nil, false
		}
	}
}

func isLifetimeMarker(call *ir.InstCall) bool {
	if fn, ok := call.Callee.(*ir.Func); !ok {
		return false
	} else {
		return strings.HasPrefix(fn.Name(), _LifetimePrefix)
	}
}

func accessedAs(fn *ir.Func, ptr value.Value, base types.Type) bool {
	uses, term := users(fn, ptr)
	if term {
		return false
	}

	/* check every user */
	for _, u := range uses {
		switch ins := u.(type) {
		case *ir.InstLoad:
			if !types.Equal(scalarOf(ins.ElemType), base) {
				return false
			}
		case *ir.InstStore:
			if ins.Src == ptr || !types.Equal(scalarOf(ins.Src.Type()), base) {
				return false
			}
		case *ir.InstGetElementPtr:
			if ins.Src != ptr || !accessedAs(fn, ins, base) {
				return false
			}
		case *ir.InstBitCast:
			if !accessedAs(fn, ins, base) {
				return false
			}
		case *ir.InstCall:
			if !isLifetimeMarker(ins) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
