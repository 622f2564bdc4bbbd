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
	"errors"
	"fmt"

	"github.com/cloudwego/kernsel/internal/defs"
)

// CodegenError occurs when the code generator fails to compile a width.
type CodegenError struct {
	SIMD  defs.SIMDMode
	State int
	Err   error
}

func (self *CodegenError) Error() string {
	return fmt.Sprintf("CodegenError(%s, state %d): %v", self.SIMD, self.State, self.Err)
}

func (self *CodegenError) Unwrap() error {
	return self.Err
}

// SelectionError occurs when every retry state has been tried and no kernel
// could be selected, which only happens when nothing was compiled at all.
type SelectionError struct {
	States   int
	Compiled int
}

func (self *SelectionError) Error() string {
	return fmt.Sprintf("SelectionError: no kernel selected after %d state(s) and %d compilation(s)", self.States, self.Compiled)
}

var (
	errNilProgram = errors.New("code generator returned no program")
)
