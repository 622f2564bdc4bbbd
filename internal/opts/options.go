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

package opts

// Options is the immutable configuration shared by the retry manager and the
// private memory promotion policy. It is always passed by value.
type Options struct {
	ForcedSIMD           int // 0 means not forced, otherwise 8, 16 or 32
	PreferHighestSIMD    bool
	ForceSIMD16          bool
	ForceSIMD32          bool
	ForceLeastSIMD       bool
	SpillThresholdSLM    int // percent, 0 ~ 100
	SpillThresholdNoSLM  int // percent, 0 ~ 100
	DisableRecompilation bool
	BypassAllocaSize     int
	TotalGRF             int // 0 means use the hardware default
	FirstState           int
}

// SpillThreshold returns the maximum tolerated spill cost of a compute kernel,
// as a fraction.
func (self *Options) SpillThreshold(usesSLM bool) float32 {
	if usesSLM {
		return float32(self.SpillThresholdSLM) / 100.0
	} else {
		return float32(self.SpillThresholdNoSLM) / 100.0
	}
}

// NumGRF returns the number of GRFs per hardware thread, preferring the
// override when there is one.
func (self *Options) NumGRF(hw int) int {
	if self.TotalGRF != 0 {
		return self.TotalGRF
	} else {
		return hw
	}
}

func GetDefaultOptions() Options {
	return Options{
		ForcedSIMD:           ForcedSIMD,
		PreferHighestSIMD:    PreferHighestSIMD,
		ForceSIMD16:          ForceSIMD16,
		ForceSIMD32:          ForceSIMD32,
		ForceLeastSIMD:       ForceLeastSIMD,
		SpillThresholdSLM:    SpillThresholdSLM,
		SpillThresholdNoSLM:  SpillThresholdNoSLM,
		DisableRecompilation: DisableRecompilation,
		BypassAllocaSize:     BypassAllocaSize,
		TotalGRF:             TotalGRF,
		FirstState:           FirstState,
	}
}
