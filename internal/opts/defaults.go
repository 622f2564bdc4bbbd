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

import (
	"os"
	"strconv"
)

const (
	_DefaultSpillThresholdSLM   = 0 // any spill disqualifies a kernel that uses SLM
	_DefaultSpillThresholdNoSLM = 1 // percent
	_DefaultTotalGRF            = 0 // use the hardware GRF count
	_DefaultBypassAllocaSize    = 0
)

var (
	ForcedSIMD           = parseOrDefault("KERNSEL_FORCED_SIMD", 0, 32)
	PreferHighestSIMD    = parseBool("KERNSEL_PREFER_HIGHEST_SIMD")
	ForceSIMD16          = parseBool("KERNSEL_FORCE_SIMD16")
	ForceSIMD32          = parseBool("KERNSEL_FORCE_SIMD32")
	ForceLeastSIMD       = parseBool("KERNSEL_FORCE_LEAST_SIMD")
	SpillThresholdSLM    = parseOrDefault("KERNSEL_SPILL_THRESHOLD_SLM", _DefaultSpillThresholdSLM, 100)
	SpillThresholdNoSLM  = parseOrDefault("KERNSEL_SPILL_THRESHOLD_NO_SLM", _DefaultSpillThresholdNoSLM, 100)
	DisableRecompilation = parseBool("KERNSEL_DISABLE_RECOMPILATION")
	BypassAllocaSize     = parseOrDefault("KERNSEL_BYPASS_ALLOCA_SIZE", _DefaultBypassAllocaSize, 1<<20)
	TotalGRF             = parseOrDefault("KERNSEL_TOTAL_GRF", _DefaultTotalGRF, 256)
	FirstState           = parseOrDefault("KERNSEL_FIRST_STATE", 0, 1)
)

func parseOrDefault(key string, def int, max int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("kernsel: invalid value for " + key)
	} else if ret := int(val); ret > max {
		panic("kernsel: value too large for " + key)
	} else {
		return ret
	}
}

func parseBool(key string) bool {
	if env := os.Getenv(key); env == "" {
		return false
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("kernsel: invalid value for " + key)
	} else {
		return val
	}
}
