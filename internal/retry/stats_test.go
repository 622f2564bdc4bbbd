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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCostWindow(t *testing.T) {
	var w costWindow
	require.Empty(t, w.values())
	w.add(1)
	w.add(2)
	require.Equal(t, []float64{1, 2}, w.values())

	/* the oldest values are dropped once full */
	for i := 0; i < _CostWindow; i++ {
		w.add(float64(i + 10))
	}
	v := w.values()
	require.Len(t, v, _CostWindow)
	require.Equal(t, float64(10), v[0])
	require.Equal(t, float64(_CostWindow+9), v[_CostWindow-1])
}
