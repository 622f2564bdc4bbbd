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

package kernsel

import (
	"testing"

	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/require"
)

func testKernel() *ir.Func {
	fn := ir.NewModule().NewFunc("kernel", types.Void)
	fn.NewBlock("entry").NewRet(nil)
	return fn
}

func testGen(spill map[SIMDMode]float32) CodeGenerator {
	return CodeGeneratorFunc(func(req *Request) (*Result, error) {
		return &Result{
			SpillCost: spill[req.SIMD],
			SpillSize: uint32(spill[req.SIMD] * 100),
			Program:   []byte(req.SIMD.String()),
		}, nil
	})
}

func TestCompile(t *testing.T) {
	dispatch := &Dispatch{GroupX: 64, HWThreadsPerWG: 64}
	p, err := Compile(testKernel(), dispatch, testGen(nil), WithSpillThreshold(0, 1), WithForcedSIMD(0))
	require.NoError(t, err)
	require.Equal(t, SIMD32, p.SIMD)
	require.Equal(t, []byte("SIMD32"), p.Binary)

	/* overrides */
	p, err = Compile(testKernel(), dispatch, testGen(nil), WithForceLeastSIMD(true))
	require.NoError(t, err)
	require.Equal(t, SIMD8, p.SIMD)
	p, err = Compile(testKernel(), dispatch, testGen(map[SIMDMode]float32{SIMD32: 0.5}), WithPreferHighestSIMD(true), WithSpillThreshold(0, 1))
	require.NoError(t, err)
	require.Equal(t, SIMD16, p.SIMD)
}

func TestCompile_Errors(t *testing.T) {
	dispatch := &Dispatch{GroupX: 64, HWThreadsPerWG: 64, LeastSIMD: SIMD32, MaxSIMD: SIMD8}
	_, err := Compile(testKernel(), dispatch, testGen(nil))
	var se *SelectionError
	require.ErrorAs(t, err, &se)
}

func TestProgram_Codec(t *testing.T) {
	p := &Program{SIMD: SIMD16, SpillCost: 0.25, SpillSize: 128, Binary: []byte("isa")}
	buf := EncodeProgram(p)
	require.Len(t, buf, EncodedSize(p))
	v, n, err := DecodeProgram(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, p, v)
}

func TestOptions(t *testing.T) {
	o := opts.Options{}
	for _, fn := range []Option{
		WithForcedSIMD(16),
		WithForceSIMD16(true),
		WithForceSIMD32(true),
		WithSpillThreshold(10, 20),
		WithDisableRecompilation(true),
		WithBypassAllocaSize(64),
		WithTotalGRF(256),
		WithFirstState(1),
	} {
		fn(&o)
	}
	require.Equal(t, opts.Options{
		ForcedSIMD:           16,
		ForceSIMD16:          true,
		ForceSIMD32:          true,
		SpillThresholdSLM:    10,
		SpillThresholdNoSLM:  20,
		DisableRecompilation: true,
		BypassAllocaSize:     64,
		TotalGRF:             256,
		FirstState:           1,
	}, o)

	/* invalid values */
	require.Panics(t, func() { WithForcedSIMD(4) })
	require.Panics(t, func() { WithSpillThreshold(101, 0) })
	require.Panics(t, func() { WithSpillThreshold(0, -1) })
	require.Panics(t, func() { WithBypassAllocaSize(-1) })
	require.Panics(t, func() { WithTotalGRF(512) })
	require.Panics(t, func() { WithFirstState(2) })
}

func TestSetDisableRecompilation(t *testing.T) {
	old := SetDisableRecompilation(true)
	defer SetDisableRecompilation(old)
	require.True(t, opts.GetDefaultOptions().DisableRecompilation)
}
