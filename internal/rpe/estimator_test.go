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
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/stretchr/testify/require"
)

type testFunc struct {
	fn    *ir.Func
	entry *ir.Block
	body  *ir.Block
	exit  *ir.Block
	a     value.Value
	b     value.Value
}

func buildFunc(loop bool) *testFunc {
	m := ir.NewModule()
	f := m.NewFunc("kernel", types.Void)
	entry := f.NewBlock("entry")
	body := f.NewBlock("body")
	exit := f.NewBlock("exit")

	a := entry.NewAdd(constant.NewInt(types.I32, 1), constant.NewInt(types.I32, 2))
	b := entry.NewFAdd(constant.NewFloat(types.Float, 1), constant.NewFloat(types.Float, 2))
	a.SetName("a")
	b.SetName("b")
	entry.NewBr(body)

	c := body.NewAdd(a, a)
	if loop {
		body.NewCondBr(body.NewICmp(enum.IPredSLT, c, a), body, exit)
	} else {
		body.NewBr(exit)
	}

	exit.NewFAdd(b, b)
	exit.NewRet(nil)
	return &testFunc{fn: f, entry: entry, body: body, exit: exit, a: a, b: b}
}

func TestSizeOf(t *testing.T) {
	require.Equal(t, uint64(1), SizeOf(types.I1))
	require.Equal(t, uint64(4), SizeOf(types.I32))
	require.Equal(t, uint64(2), SizeOf(types.Half))
	require.Equal(t, uint64(8), SizeOf(types.Double))
	require.Equal(t, uint64(64), SizeOf(types.NewArray(16, types.Float)))
	require.Equal(t, uint64(16), SizeOf(types.NewVector(4, types.I32)))
	require.Equal(t, uint64(12), SizeOf(types.NewStruct(types.I32, types.Double)))
	require.Equal(t, uint64(8), SizeOf(types.NewPointer(types.I8)))
	require.Zero(t, SizeOf(types.Void))

	/* sizes past the top of the range saturate instead of wrapping */
	require.Equal(t, uint64(MaxSize), SizeOf(types.NewArray(1<<61, types.I64)))
	require.Equal(t, uint64(MaxSize), SizeOf(types.NewArray(2, types.NewArray(1<<63, types.I8))))
	require.Equal(t, uint64(MaxSize), SizeOf(types.NewStruct(types.NewArray(1<<63, types.I16), types.I8)))
	require.Equal(t, uint64(1<<63), SizeOf(types.NewArray(1<<60, types.I64)))
}

func TestMulSize(t *testing.T) {
	require.Equal(t, uint64(24), MulSize(3, 8))
	require.Equal(t, uint64(MaxSize), MulSize(1<<32, 1<<32))
	require.Equal(t, uint64(MaxSize), AddSize(MaxSize, 1))
	require.Equal(t, uint64(MaxSize), AddSize(1<<63, 1<<63))
	require.Equal(t, uint64(7), AddSize(3, 4))
}

func TestEstimator_Numbering(t *testing.T) {
	tf := buildFunc(false)
	est := New(tf.fn, 16, nil)
	require.True(t, est.Available())
	require.Equal(t, Range{Lo: 0, Hi: 2}, est.BlockRange(tf.entry))
	require.Equal(t, Range{Lo: 3, Hi: 4}, est.BlockRange(tf.body))
	require.Equal(t, Range{Lo: 5, Hi: 6}, est.BlockRange(tf.exit))

	n, ok := est.AssignedNumber(tf.exit.Insts[0])
	require.True(t, ok)
	require.Equal(t, uint(5), n)
	_, ok = est.AssignedNumber(ir.NewAdd(tf.a, tf.a))
	require.False(t, ok)
}

func TestEstimator_Pressure(t *testing.T) {
	tf := buildFunc(false)
	est := New(tf.fn, 16, nil)
	require.Equal(t, uint(128), est.Pressure(tf.entry))
	require.Equal(t, uint(128), est.Pressure(tf.body))
	require.Equal(t, uint(64), est.Pressure(tf.exit))
	require.Equal(t, "{%a, %b}", est.liveIn[tf.body].String())
}

func TestEstimator_UniformValues(t *testing.T) {
	tf := buildFunc(false)
	est := New(tf.fn, 16, func(v value.Value) bool { return v == tf.a })
	require.Equal(t, uint(68), est.Pressure(tf.body))
}

func TestEstimator_LoopCarriesLiveness(t *testing.T) {
	tf := buildFunc(true)
	est := New(tf.fn, 8, nil)
	_, ok := est.liveOut[tf.body][tf.a]
	require.True(t, ok)
	_, ok = est.liveOut[tf.body][tf.b]
	require.True(t, ok)
	require.Equal(t, uint(4*8*3), est.Pressure(tf.body))
}

func TestEstimator_Unavailable(t *testing.T) {
	require.False(t, Unavailable().Available())
	decl := ir.NewModule().NewFunc("decl", types.Void)
	est := New(decl, 8, nil)
	require.False(t, est.Available())
	require.Zero(t, est.Pressure(ir.NewBlock("orphan")))
}

func TestRange_Overlaps(t *testing.T) {
	r := Range{Lo: 3, Hi: 6}
	require.True(t, r.Overlaps(0, 3))
	require.True(t, r.Overlaps(6, 9))
	require.True(t, r.Overlaps(4, 5))
	require.False(t, r.Overlaps(0, 2))
	require.False(t, r.Overlaps(7, 9))
}
