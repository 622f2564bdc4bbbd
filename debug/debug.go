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

package debug

import (
	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/privmem"
	"github.com/cloudwego/kernsel/internal/retry"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// A Stats records statistics about kernel compilation.
type Stats struct {
	Retry     RetryStats
	Promotion PromotionStats
	Spill     SpillStats
}

// A RetryStats records how often kernels were recompiled, and which SIMD
// widths were finally selected.
type RetryStats struct {
	Advanced int
	SIMD8    int
	SIMD16   int
	SIMD32   int
}

// A PromotionStats records the verdicts of the private memory promotion policy.
type PromotionStats struct {
	Accepted int
	Rejected int
}

// A SpillStats summarizes the spill costs of the most recently selected
// kernels.
type SpillStats struct {
	Count int
	Mean  float64
	Max   float64
}

// GetStats returns statistics of kernel compilation.
func GetStats() Stats {
	return Stats{
		Retry: RetryStats{
			Advanced: int(retry.AdvanceCount),
			SIMD8:    int(retry.PickCount[defs.SIMD8.Index()]),
			SIMD16:   int(retry.PickCount[defs.SIMD16.Index()]),
			SIMD32:   int(retry.PickCount[defs.SIMD32.Index()]),
		},
		Promotion: PromotionStats{
			Accepted: int(privmem.AcceptCount),
			Rejected: int(privmem.RejectCount),
		},
		Spill: spillStats(retry.PickedSpillCosts()),
	}
}

func spillStats(v []float64) SpillStats {
	if len(v) == 0 {
		return SpillStats{}
	} else {
		return SpillStats{Count: len(v), Mean: stat.Mean(v, nil), Max: floats.Max(v)}
	}
}
