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

package rpe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/llir/llvm/ir/value"
)

type valueSet map[value.Value]struct{}

func (self valueSet) add(v value.Value) {
	self[v] = struct{}{}
}

func (self valueSet) remove(v value.Value) {
	delete(self, v)
}

func (self valueSet) union(vs valueSet) bool {
	nb := len(self)
	for v := range vs {
		self.add(v)
	}
	return len(self) != nb
}

func (self valueSet) clone() (vs valueSet) {
	vs = make(valueSet, len(self))
	for v := range self {
		vs.add(v)
	}
	return
}

func (self valueSet) String() string {
	nb := len(self)
	vs := make([]string, 0, nb)

	/* convert every value */
	for v := range self {
		vs = append(vs, v.Ident())
	}

	/* sort by name */
	sort.Strings(vs)
	return fmt.Sprintf(
		"{%s}",
		strings.Join(vs, ", "),
	)
}
