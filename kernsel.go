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
	"github.com/cloudwego/kernsel/internal/cost"
	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/driver"
	"github.com/cloudwego/kernsel/internal/kernel"
	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/llir/llvm/ir"
)

type (
	// SIMDMode is the number of lanes a kernel is compiled for.
	SIMDMode = defs.SIMDMode

	// Dispatch describes how a compute kernel is going to be dispatched.
	Dispatch = cost.CSContext

	// Program is the selected kernel.
	Program = kernel.Program

	// CodeGenerator compiles a kernel at a single SIMD width.
	CodeGenerator = driver.CodeGenerator

	// CodeGeneratorFunc adapts a function to CodeGenerator.
	CodeGeneratorFunc = driver.CodeGeneratorFunc

	// Request is what the CodeGenerator is asked to compile.
	Request = driver.Request

	// Result is what the CodeGenerator produced.
	Result = driver.Result
)

const (
	SIMD8  = defs.SIMD8
	SIMD16 = defs.SIMD16
	SIMD32 = defs.SIMD32
)

// Compile compiles fn with gen, retrying with more conservative optimization
// profiles until one of the compiled SIMD widths can be selected.
func Compile(fn *ir.Func, dispatch *Dispatch, gen CodeGenerator, options ...Option) (*Program, error) {
	o := opts.GetDefaultOptions()
	for _, opt := range options {
		opt(&o)
	}

	/* run the retry loop */
	r, err := driver.Run(&driver.Kernel{Func: fn, CS: dispatch}, gen, o)
	if err != nil {
		return nil, err
	}
	return r.Output.Program(), nil
}

// EncodedSize measures the encoded size of p.
func EncodedSize(p *Program) int {
	return kernel.EncodedSize(p)
}

// EncodeProgram serializes p with Thrift Binary Protocol.
func EncodeProgram(p *Program) []byte {
	return kernel.EncodeProgram(p)
}

// DecodeProgram deserializes buf with Thrift Binary Protocol.
func DecodeProgram(buf []byte) (*Program, int, error) {
	return kernel.DecodeProgram(buf)
}
