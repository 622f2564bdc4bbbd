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

package driver

import (
	"github.com/cloudwego/kernsel/internal/cost"
	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/kernel"
	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/cloudwego/kernsel/internal/privmem"
	"github.com/cloudwego/kernsel/internal/retry"
	"github.com/cloudwego/kernsel/internal/rpe"
	"github.com/llir/llvm/ir"
)

// Kernel is a compute kernel to be compiled.
type Kernel struct {
	Func    *ir.Func
	CS      *cost.CSContext
	Uniform rpe.UniformFunc
}

// Request asks the code generator for one width of the kernel.
type Request struct {
	Func     *ir.Func
	SIMD     defs.SIMDMode
	State    int
	LastTry  bool
	Profile  retry.Profile
	Promoted []*ir.InstAlloca
}

// Result is what the code generator produced for a Request.
type Result struct {
	SpillCost float32
	SpillSize uint32
	InstCount uint32
	Program   []byte
}

// CodeGenerator compiles a kernel at a single SIMD width.
type CodeGenerator interface {
	Generate(req *Request) (*Result, error)
}

// CodeGeneratorFunc adapts a function to CodeGenerator.
type CodeGeneratorFunc func(req *Request) (*Result, error)

func (self CodeGeneratorFunc) Generate(req *Request) (*Result, error) {
	return self(req)
}

// Attempt records what happened in one retry state.
type Attempt struct {
	State     int
	Spills    bool            // any stored candidate spills after this state
	Compiled  []defs.SIMDMode // widths sent to the code generator
	Kept      []defs.SIMDMode // widths whose earlier candidate was better
	Decisions []privmem.Decision
}

// Report is the outcome of Run.
type Report struct {
	Output   kernel.ProgramOutput
	Attempts []Attempt
}

// Run drives the retry loop of one kernel until a width is selected.
func Run(k *Kernel, gen CodeGenerator, o opts.Options) (*Report, error) {
	rm := retry.New(o)
	ctx := &retry.Context{Type: defs.ComputeShader, CS: k.CS}
	ret := new(Report)
	count := 0

	/* candidates are owned by the manager */
	rm.Enable()
	defer rm.Close()

	/* one attempt per retry state */
	for {
		at := Attempt{State: rm.RetryID()}
		req := Request{Func: k.Func, State: at.State, LastTry: rm.IsLastTry(), Profile: rm.Profile()}

		/* private memory promotion is only tried in some states */
		if rm.AllowPromotePrivateMemory() {
			at.Decisions = promote(k, o)
			req.Promoted = privmem.Promoted(at.Decisions)
		}

		/* compile every width that has no usable candidate yet */
		for _, simd := range widths(k.CS, &o) {
			old := rm.GetSIMDEntry(simd)
			if old != nil && !old.Spills() {
				continue
			}

			/* generate the code */
			req.SIMD = simd
			res, err := gen.Generate(&req)
			if err == nil && res == nil {
				err = errNilProgram
			}
			if err != nil {
				return nil, &CodegenError{SIMD: simd, State: at.State, Err: err}
			}

			/* the spill size to beat is the one of the previous state */
			count++
			rm.ClearSpillParams()
			at.Compiled = append(at.Compiled, simd)
			c := kernel.NewCandidate(simd, res.SpillCost, res.SpillSize, res.Program)
			c.InstCount = res.InstCount
			if old != nil {
				rm.SetSpillSize(old.SpillSize)
			}

			/* a recompilation that spills no less is thrown away */
			if rm.LastSpillSize() != 0 && !rm.IsBetterThanPrevious(c, 1) {
				c.Release()
				at.Kept = append(at.Kept, simd)
			} else {
				rm.SaveSIMDEntry(simd, c)
			}
		}

		/* try to select a kernel */
		at.Spills = rm.AnyKernelSpills()
		ret.Attempts = append(ret.Attempts, at)
		if rm.PickupKernels(ctx) {
			ret.Output = ctx.Output
			return ret, nil
		}

		/* otherwise recompile with a more conservative profile */
		if !rm.AdvanceState() {
			return nil, &SelectionError{States: len(ret.Attempts), Compiled: count}
		}
	}
}

func widths(cs *cost.CSContext, o *opts.Options) []defs.SIMDMode {
	if simd := defs.FromLanes(o.ForcedSIMD); simd.IsValid() {
		return []defs.SIMDMode{simd}
	} else {
		return cs.Allowed()
	}
}

func promote(k *Kernel, o opts.Options) []privmem.Decision {
	est := rpe.New(k.Func, k.CS.Least().Lanes(), k.Uniform)
	budget := privmem.BudgetFor(&o, privmem.TargetOf(k.CS))
	return privmem.Promote(privmem.NewPolicy(o, budget, k.Func, est))
}
