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

package retry

import (
	"sync"
	"sync/atomic"

	"github.com/cloudwego/kernsel/internal/defs"
)

const (
	_CostWindow = 1024 // spill costs of the most recent picks kept for statistics
)

var (
	AdvanceCount uint64
	PickCount    [defs.NumSIMDModes]uint64
)

var (
	pickedCost costWindow
)

// costWindow keeps the last _CostWindow values in a ring.
type costWindow struct {
	mu   sync.Mutex
	next int
	size int
	buf  [_CostWindow]float64
}

func (self *costWindow) add(v float64) {
	self.mu.Lock()
	self.buf[self.next] = v
	self.next = (self.next + 1) % _CostWindow
	self.size = min(self.size+1, _CostWindow)
	self.mu.Unlock()
}

// values returns the kept values, oldest first.
func (self *costWindow) values() []float64 {
	self.mu.Lock()
	defer self.mu.Unlock()
	ret := make([]float64, 0, self.size)

	/* the oldest value is at next once the ring is full */
	if self.size == _CostWindow {
		ret = append(ret, self.buf[self.next:]...)
		ret = append(ret, self.buf[:self.next]...)
	} else {
		ret = append(ret, self.buf[:self.size]...)
	}
	return ret
}

func atomicInc(p *uint64) {
	atomic.AddUint64(p, 1)
}

func recordPick(simd defs.SIMDMode, spillCost float32) {
	atomicInc(&PickCount[simd.Index()])
	pickedCost.add(float64(spillCost))
}

// PickedSpillCosts returns the spill costs of the most recently picked
// kernels, oldest first.
func PickedSpillCosts() []float64 {
	return pickedCost.values()
}
