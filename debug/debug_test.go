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

package debug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpillStats(t *testing.T) {
	require.Equal(t, SpillStats{}, spillStats(nil))
	require.Equal(t, SpillStats{Count: 4, Mean: 0.25, Max: 0.5}, spillStats([]float64{0, 0.5, 0.25, 0.25}))
}

func TestGetStats(t *testing.T) {
	s := GetStats()
	require.GreaterOrEqual(t, s.Retry.Advanced, 0)
	require.LessOrEqual(t, s.Spill.Count, s.Retry.SIMD8+s.Retry.SIMD16+s.Retry.SIMD32)
}
