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

package kernel

import (
	"testing"

	"github.com/cloudwego/kernsel/internal/defs"
	"github.com/stretchr/testify/require"
)

func TestCandidate_Release(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	c := NewCandidate(defs.SIMD16, 0.25, 64, src)
	src[0] = 9
	require.Equal(t, []byte{1, 2, 3, 4}, c.Program())
	require.True(t, c.Spills())
	require.False(t, c.Released())
	c.Release()
	require.True(t, c.Released())
	require.Nil(t, c.Program())
	require.NotPanics(t, c.Release)
}

func TestCandidate_InvalidSIMD(t *testing.T) {
	require.Panics(t, func() { NewCandidate(defs.SIMDUnknown, 0, 0, nil) })
	require.Panics(t, func() { NewCandidate(defs.SIMDMode(7), 0, 0, nil) })
}

func TestProgramOutput_FillOutlivesCandidate(t *testing.T) {
	var out ProgramOutput
	require.Nil(t, out.Program())
	c := NewCandidate(defs.SIMD32, 0, 0, []byte("kernel"))
	out.Fill(c)
	c.Release()
	require.Equal(t, defs.SIMD32, out.Selected)
	require.NotNil(t, out.Slots[2])
	require.Nil(t, out.Slots[0])
	require.Equal(t, []byte("kernel"), out.Program().Binary)
}

func TestCodec_EncodeDecode(t *testing.T) {
	p := &Program{SIMD: defs.SIMD16, SpillCost: 0.5, SpillSize: 128, Binary: []byte{0xde, 0xad, 0xbe, 0xef}}
	buf := EncodeProgram(p)
	require.Len(t, buf, EncodedSize(p))
	ret, n, err := DecodeProgram(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, p, ret)
}

func TestCodec_DecodeErrors(t *testing.T) {
	_, _, err := DecodeProgram([]byte{0})
	require.ErrorIs(t, err, errMissingSIMD)
	_, _, err = DecodeProgram(nil)
	require.Error(t, err)
	bad := EncodeProgram(&Program{SIMD: defs.SIMD8})
	bad[6] = 12 // lane count low byte
	_, _, err = DecodeProgram(bad)
	require.Error(t, err)
}
