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
	"fmt"

	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/cloudwego/kernsel/internal/retry"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

const (
	_MaxPercent  = 100
	_MaxTotalGRF = 256
)

// WithForcedSIMD compiles and ships only the given SIMD width.
//
// Set this option to "0" lets the selection policy decide.
//
// This value can also be configured with the `KERNSEL_FORCED_SIMD`
// environment variable.
func WithForcedSIMD(lanes int) Option {
	if lanes != 0 && !defs.FromLanes(lanes).IsValid() {
		panic(fmt.Sprintf("kernsel: invalid SIMD width: %d", lanes))
	} else {
		return func(o *opts.Options) { o.ForcedSIMD = lanes }
	}
}

// WithPreferHighestSIMD selects the widest width that does not spill,
// regardless of occupancy.
func WithPreferHighestSIMD(v bool) Option {
	return func(o *opts.Options) { o.PreferHighestSIMD = v }
}

// WithForceSIMD16 selects SIMD16 whenever it was compiled.
func WithForceSIMD16(v bool) Option {
	return func(o *opts.Options) { o.ForceSIMD16 = v }
}

// WithForceSIMD32 selects SIMD32 whenever it was compiled.
func WithForceSIMD32(v bool) Option {
	return func(o *opts.Options) { o.ForceSIMD32 = v }
}

// WithForceLeastSIMD selects the narrowest width that was compiled.
func WithForceLeastSIMD(v bool) Option {
	return func(o *opts.Options) { o.ForceLeastSIMD = v }
}

// WithSpillThreshold sets the spill costs, in percent, a kernel may have and
// still be selected early. Kernels that use SLM and kernels that don't have
// separate thresholds.
//
// The default values are "0" and "1".
func WithSpillThreshold(slm int, noSLM int) Option {
	if slm < 0 || slm > _MaxPercent {
		panic(fmt.Sprintf("kernsel: invalid SLM spill threshold: %d", slm))
	} else if noSLM < 0 || noSLM > _MaxPercent {
		panic(fmt.Sprintf("kernsel: invalid spill threshold: %d", noSLM))
	} else {
		return func(o *opts.Options) { o.SpillThresholdSLM, o.SpillThresholdNoSLM = slm, noSLM }
	}
}

// WithDisableRecompilation compiles every kernel exactly once.
func WithDisableRecompilation(v bool) Option {
	return func(o *opts.Options) { o.DisableRecompilation = v }
}

// WithBypassAllocaSize promotes every alloca no larger than size bytes to
// registers, without looking at the register budget.
func WithBypassAllocaSize(size int) Option {
	if size < 0 {
		panic(fmt.Sprintf("kernsel: invalid bypass alloca size: %d", size))
	} else {
		return func(o *opts.Options) { o.BypassAllocaSize = size }
	}
}

// WithTotalGRF overrides the number of GRFs per hardware thread, which scales
// the private memory promotion budget.
//
// The default value "0" uses the hardware count.
func WithTotalGRF(n int) Option {
	if n < 0 || n > _MaxTotalGRF {
		panic(fmt.Sprintf("kernsel: invalid GRF count: %d", n))
	} else {
		return func(o *opts.Options) { o.TotalGRF = n }
	}
}

// WithFirstState starts compilation at the given retry state instead of the
// most aggressive one.
func WithFirstState(state int) Option {
	if state < 0 || state >= retry.NumStates() {
		panic(fmt.Sprintf("kernsel: invalid retry state: %d", state))
	} else {
		return func(o *opts.Options) { o.FirstState = state }
	}
}

// SetDisableRecompilation sets the default recompilation switch for all kernels
// from now on.
//
// This value can also be configured with the `KERNSEL_DISABLE_RECOMPILATION`
// environment variable.
//
// Returns the old opts.DisableRecompilation value.
func SetDisableRecompilation(v bool) bool {
	v, opts.DisableRecompilation = opts.DisableRecompilation, v
	return v
}
