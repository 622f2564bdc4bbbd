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

package defs

import (
	"fmt"
)

// SIMDMode is the dispatch width of a compiled kernel.
type SIMDMode uint8

const (
	SIMDUnknown SIMDMode = iota
	SIMD8
	SIMD16
	SIMD32
)

// NumSIMDModes is the number of valid SIMD modes, which is also the size of
// every per-SIMD slot array.
const NumSIMDModes = 3

var simdLanes = [...]int{
	SIMD8:  8,
	SIMD16: 16,
	SIMD32: 32,
}

// SIMDModes lists every valid mode from the narrowest to the widest.
var SIMDModes = [NumSIMDModes]SIMDMode{SIMD8, SIMD16, SIMD32}

func (self SIMDMode) IsValid() bool {
	return self >= SIMD8 && self <= SIMD32
}

// Lanes returns the number of SIMD lanes, it panics on invalid modes.
func (self SIMDMode) Lanes() int {
	return simdLanes[self.Must()]
}

// Index returns the slot index of the mode, SIMD8 being 0.
func (self SIMDMode) Index() int {
	return int(self.Must() - SIMD8)
}

// Must returns the mode itself, or panics if it is not a valid SIMD mode.
func (self SIMDMode) Must() SIMDMode {
	if !self.IsValid() {
		panic(fmt.Sprintf("defs: invalid SIMD mode: %d", self))
	}
	return self
}

func (self SIMDMode) String() string {
	switch self {
	case SIMD8:
		return "SIMD8"
	case SIMD16:
		return "SIMD16"
	case SIMD32:
		return "SIMD32"
	default:
		return fmt.Sprintf("SIMDUnknown(%d)", self)
	}
}

// FromLanes converts a lane count to its SIMD mode. Zero and any other
// unsupported counts map to SIMDUnknown.
func FromLanes(n int) SIMDMode {
	switch n {
	case 8:
		return SIMD8
	case 16:
		return SIMD16
	case 32:
		return SIMD32
	default:
		return SIMDUnknown
	}
}

// ShaderType is the pipeline stage a kernel is compiled for.
type ShaderType uint8

const (
	ComputeShader ShaderType = iota
	PixelShader
	VertexShader
	OpenCLKernel
)

var shaderNames = [...]string{
	ComputeShader: "compute",
	PixelShader:   "pixel",
	VertexShader:  "vertex",
	OpenCLKernel:  "opencl",
}

func (self ShaderType) String() string {
	if int(self) < len(shaderNames) {
		return shaderNames[self]
	} else {
		return fmt.Sprintf("ShaderType(%d)", self)
	}
}
