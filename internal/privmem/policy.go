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

package privmem

import (
	"fmt"
	"math"

	"github.com/cloudwego/kernsel/internal/cost"
	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/cloudwego/kernsel/internal/opts"
	"github.com/cloudwego/kernsel/internal/rpe"
	"github.com/docker/go-units"
	"github.com/llir/llvm/ir"
)

const (
	_MaxAllocaPromoteGRF = 48 // GRFs an alloca may take after promotion
	_MaxPressureGRF      = 64 // GRFs of pressure a block may reach
	_GRFUnitBytes        = 4
	_UniformDivisor      = 8
)

// Status is the verdict of the promotion policy.
type Status uint8

const (
	OK Status = iota
	CannotUseSOALayout
	IsDynamicAlloca
	OutOfAllocSizeLimit
	OutOfMaxGRFPressure
)

var statusNames = [...]string{
	OK:                  "ok",
	CannotUseSOALayout:  "cannot use SOA layout",
	IsDynamicAlloca:     "dynamic alloca",
	OutOfAllocSizeLimit: "out of alloca size limit",
	OutOfMaxGRFPressure: "out of max GRF pressure",
}

func (self Status) String() string {
	if int(self) < len(statusNames) {
		return statusNames[self]
	} else {
		return fmt.Sprintf("Status(%d)", self)
	}
}

// Budget is the register budget of one function, in bytes.
type Budget struct {
	Allowed     uint64 // largest promotable alloca
	MaxPressure uint64 // highest pressure a block may reach
}

// Target describes what the function is compiled for.
type Target struct {
	Type      defs.ShaderType
	NumGRF    int           // hardware GRFs per thread, 0 means the default
	LeastSIMD defs.SIMDMode // compute shaders only
}

// TargetOf builds the target of a compute kernel.
func TargetOf(cs *cost.CSContext) Target {
	return Target{
		Type:      defs.ComputeShader,
		NumGRF:    cs.NumGRF,
		LeastSIMD: cs.Least(),
	}
}

// BudgetFor scales the baseline budgets by the number of GRFs, and shrinks
// the alloca budget of compute kernels that can only run in SIMD32.
func BudgetFor(o *opts.Options, target Target) Budget {
	ratio := cost.GRFRatio(o, target.NumGRF)

	/* scale both limits */
	allowed := uint64(float32(_MaxAllocaPromoteGRF*_GRFUnitBytes) * ratio)
	pressure := uint64(float32(_MaxPressureGRF*_GRFUnitBytes) * ratio)

	/* each SIMD32 lane pair needs 4x the space */
	if target.Type == defs.ComputeShader && target.LeastSIMD == defs.SIMD32 {
		allowed /= 4
	}

	/* construct the budget */
	return Budget{
		Allowed:     allowed,
		MaxPressure: pressure,
	}
}

// Decision records why an alloca was or was not promoted.
type Decision struct {
	Alloca    *ir.InstAlloca
	Size      uint64 // bytes of private memory
	Effective uint64 // bytes charged against the budget
	Allowed   uint64
	Uniform   bool
	Accepted  bool
	Status    Status
}

func (self Decision) String() string {
	name := "<nil>"
	if self.Alloca != nil {
		name = self.Alloca.Ident()
	}

	/* format the verdict */
	return fmt.Sprintf(
		"%s: %s (size = %s, charged = %s, allowed = %s, uniform = %v)",
		name,
		self.Status,
		units.BytesSize(float64(self.Size)),
		units.BytesSize(float64(self.Effective)),
		units.BytesSize(float64(self.Allowed)),
		self.Uniform,
	)
}

// Policy decides which allocas of one function are promoted to registers.
// It is greedy: allocas are judged in the order they are checked, and every
// accepted one permanently takes budget from the blocks of its live range.
type Policy struct {
	fn      *ir.Func
	est     Estimator
	legal   Legality
	ledger  *Ledger
	budget  Budget
	bypass  uint64
	uniform func(*ir.InstAlloca) bool
}

// NewPolicy creates the policy of fn. A nil estimator is treated as
// unavailable.
func NewPolicy(o opts.Options, budget Budget, fn *ir.Func, est Estimator) *Policy {
	if est == nil {
		est = unavailable{}
	}

	/* construct the policy */
	return &Policy{
		fn:      fn,
		est:     est,
		legal:   SOALayout{},
		ledger:  NewLedger(fn, est),
		budget:  budget,
		bypass:  uint64(o.BypassAllocaSize),
		uniform: MetadataUniform,
	}
}

// WithLegality replaces the SOA layout check.
func (self *Policy) WithLegality(legal Legality) *Policy {
	self.legal = legal
	return self
}

// WithUniform replaces the uniform alloca detection.
func (self *Policy) WithUniform(fn func(*ir.InstAlloca) bool) *Policy {
	self.uniform = fn
	return self
}

func (self *Policy) Ledger() *Ledger { return self.ledger }
func (self *Policy) Budget() Budget  { return self.budget }

// CheckIfAllocaPromotable judges one alloca of the function.
func (self *Policy) CheckIfAllocaPromotable(a *ir.InstAlloca) Decision {
	size, ok := AllocaSize(a)
	if !ok {
		return self.reject(Decision{Alloca: a, Allowed: self.budget.Allowed}, IsDynamicAlloca)
	}

	/* must be representable in registers */
	if _, ok = self.legal.CanUseSOALayout(self.fn, a); !ok {
		return self.reject(Decision{Alloca: a, Size: size, Allowed: self.budget.Allowed}, CannotUseSOALayout)
	}

	/* judge by size and pressure */
	d := self.Check(size, self.uniform(a), derivedUsers(self.fn, a))
	d.Alloca = a
	return d
}

// Check judges an alloca of the given size that is used by uses.
func (self *Policy) Check(size uint64, uniform bool, uses []ir.Instruction) Decision {
	d := Decision{
		Size:      size,
		Effective: size,
		Allowed:   self.budget.Allowed,
		Uniform:   uniform,
	}

	/* uniform allocas take one lane instead of all of them */
	if uniform {
		d.Effective = divCeil(size, _UniformDivisor)
	}

	/* small enough to skip every other check */
	if d.Effective <= self.bypass {
		return self.accept(d)
	}

	/* too large to promote */
	if d.Effective > self.budget.Allowed {
		return self.reject(d, OutOfAllocSizeLimit)
	}

	/* nothing to estimate with */
	if !self.est.Available() {
		return self.accept(d)
	}

	/* the live range of the alloca */
	lo, hi := uint(math.MaxUint), uint(0)
	for _, u := range uses {
		if n, ok := self.est.AssignedNumber(u); ok {
			lo = min(lo, n)
			hi = max(hi, n)
		}
	}

	/* every block within the live range must have room */
	blocks := self.ledger.Overlapping(lo, hi)
	for _, bb := range blocks {
		if uint64(self.ledger.At(bb))+d.Effective > self.budget.MaxPressure {
			return self.reject(d, OutOfMaxGRFPressure)
		}
	}

	/* reserve the space */
	for _, bb := range blocks {
		self.ledger.Reserve(bb, uint(d.Effective))
	}
	return self.accept(d)
}

func (self *Policy) accept(d Decision) Decision {
	d.Accepted = true
	d.Status = OK
	atomicInc(&AcceptCount)
	return d
}

func (self *Policy) reject(d Decision, status Status) Decision {
	d.Accepted = false
	d.Status = status
	atomicInc(&RejectCount)
	return d
}

type unavailable struct{}

func (unavailable) Available() bool                            { return false }
func (unavailable) AssignedNumber(ir.Instruction) (uint, bool) { return 0, false }
func (unavailable) BlockRange(*ir.Block) rpe.Range             { return rpe.Range{} }
func (unavailable) Pressure(*ir.Block) uint                    { return 0 }
