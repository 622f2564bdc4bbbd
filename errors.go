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
	"github.com/cloudwego/kernsel/internal/driver"
)

// CodegenError occurs when the code generator fails to compile a SIMD width.
type CodegenError = driver.CodegenError

// SelectionError occurs when no kernel could be selected after every retry
// state, which means nothing was compiled at all.
type SelectionError = driver.SelectionError
