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
	"testing"

	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/stretchr/testify/require"
)

func TestThreadOccupancy_NoSLM(t *testing.T) {
	// 256 work-items: 32 threads at SIMD8, 16 at SIMD16, 8 at SIMD32
	require.Equal(t, float32(1), ThreadOccupancy(defs.SIMD8, 256, 64, 0, 0))
	require.Equal(t, float32(1), ThreadOccupancy(defs.SIMD16, 256, 64, 0, 0))
	require.Equal(t, float32(1), ThreadOccupancy(defs.SIMD32, 256, 64, 0, 0))

	// 3 groups of 20 threads fit into 64 threads
	require.InDelta(t, 60.0/64.0, ThreadOccupancy(defs.SIMD8, 160, 64, 0, 0), 1e-6)
}

func TestThreadOccupancy_SLMBound(t *testing.T) {
	// SLM allows only 2 groups per sub-slice
	occu8 := ThreadOccupancy(defs.SIMD8, 128, 64, 32<<10, 64<<10)
	occu16 := ThreadOccupancy(defs.SIMD16, 128, 64, 32<<10, 64<<10)
	require.Equal(t, float32(32)/64, occu8)
	require.Equal(t, float32(16)/64, occu16)
	require.Greater(t, occu8, occu16)
}

func TestThreadOccupancy_Degenerate(t *testing.T) {
	require.Zero(t, ThreadOccupancy(defs.SIMD8, 64, 0, 0, 0))
	require.Zero(t, ThreadOccupancy(defs.SIMD8, 1024, 64, 0, 0))
	require.Panics(t, func() { ThreadOccupancy(defs.SIMDUnknown, 64, 64, 0, 0) })
}

func TestCSContext_Allowed(t *testing.T) {
	ctx := CSContext{}
	require.Equal(t, []defs.SIMDMode{defs.SIMD8, defs.SIMD16, defs.SIMD32}, ctx.Allowed())
	ctx = CSContext{LeastSIMD: defs.SIMD16, MaxSIMD: defs.SIMD16}
	require.Equal(t, []defs.SIMDMode{defs.SIMD16}, ctx.Allowed())
	require.Equal(t, 1, ctx.ThreadGroupSize())
}

func TestCSContext_SpillThresholdAndRatio(t *testing.T) {
	o := opts.Options{SpillThresholdSLM: 2, SpillThresholdNoSLM: 10}
	ctx := CSContext{}
	require.InDelta(t, 0.1, ctx.SpillThreshold(&o), 1e-6)
	ctx.SLMSize = 1024
	require.InDelta(t, 0.02, ctx.SpillThreshold(&o), 1e-6)
	require.Equal(t, float32(1), ctx.GRFRatio(&o))
	ctx.NumGRF = 256
	require.Equal(t, float32(2), ctx.GRFRatio(&o))
	o.TotalGRF = 64
	require.Equal(t, float32(0.5), ctx.GRFRatio(&o))
	require.Equal(t, ctx.GRFRatio(&o), GRFRatio(&o, 0))
	require.Equal(t, ctx.GRFRatio(&o), GRFRatio(&o, 256))
}
