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
	"fmt"
)

const (
	_S_terminal = 500 // any index past the end of the table terminates retrying
)

// Profile selects which optimizations are permitted during one compilation
// attempt.
type Profile struct {
	AllowUnroll               bool
	AllowLICM                 bool
	AllowCodeSinking          bool
	AllowSimd32Slicing        bool
	AllowPromotePrivateMemory bool
	AllowPreRAScheduler       bool
	AllowLargeURBWrite        bool
	Next                      int
}

var _Profiles = [...]Profile{
	/* state 0: aggressive */
	{
		AllowUnroll:               true,
		AllowLICM:                 true,
		AllowCodeSinking:          true,
		AllowSimd32Slicing:        false,
		AllowPromotePrivateMemory: true,
		AllowPreRAScheduler:       true,
		AllowLargeURBWrite:        true,
		Next:                      1,
	},

	/* state 1: conservative, trade speed for lower register pressure */
	{
		AllowUnroll:               false,
		AllowLICM:                 false,
		AllowCodeSinking:          true,
		AllowSimd32Slicing:        true,
		AllowPromotePrivateMemory: false,
		AllowPreRAScheduler:       false,
		AllowLargeURBWrite:        false,
		Next:                      _S_terminal,
	},
}

// NumStates returns the number of retry states.
func NumStates() int {
	return len(_Profiles)
}

// ProfileOf returns the profile of a retry state, it panics if the state
// does not exist.
func ProfileOf(state int) Profile {
	if state < 0 || state >= len(_Profiles) {
		panic(fmt.Sprintf("retry: invalid retry state: %d", state))
	}
	return _Profiles[state]
}

func (self Profile) String() string {
	return fmt.Sprintf(
		"Profile { unroll = %v, licm = %v, sinking = %v, simd32_slicing = %v, promote = %v, prera_sched = %v, large_urb = %v, next = %d }",
		self.AllowUnroll,
		self.AllowLICM,
		self.AllowCodeSinking,
		self.AllowSimd32Slicing,
		self.AllowPromotePrivateMemory,
		self.AllowPreRAScheduler,
		self.AllowLargeURBWrite,
		self.Next,
	)
}
