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
	"errors"
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/cloudwego/gopkg/protocol/thrift"
	"github.com/cloudwego/kernsel/internal/defs"
)

const (
	_F_simd      = 1
	_F_spillCost = 2
	_F_spillSize = 3
	_F_binary    = 4
)

const (
	_FieldHeaderSize = 3
	_FieldStopSize   = 1
	_I32Size         = 4
	_DoubleSize      = 8
)

var errMissingSIMD = errors.New("kernel: program has no SIMD field")

// EncodedSize returns the number of bytes EncodeProgram writes.
func EncodedSize(p *Program) int {
	return _FieldHeaderSize*4 + _I32Size*3 + _DoubleSize + len(p.Binary) + _FieldStopSize
}

// EncodeProgram serializes the program as a Thrift Binary struct.
func EncodeProgram(p *Program) []byte {
	i := 0
	b := dirtmake.Bytes(EncodedSize(p), EncodedSize(p))

	/* SIMD width is stored as the lane count */
	i += thrift.Binary.WriteFieldBegin(b[i:], thrift.I32, _F_simd)
	i += thrift.Binary.WriteI32(b[i:], int32(p.SIMD.Lanes()))

	/* spill statistics */
	i += thrift.Binary.WriteFieldBegin(b[i:], thrift.DOUBLE, _F_spillCost)
	i += thrift.Binary.WriteDouble(b[i:], float64(p.SpillCost))
	i += thrift.Binary.WriteFieldBegin(b[i:], thrift.I32, _F_spillSize)
	i += thrift.Binary.WriteI32(b[i:], int32(p.SpillSize))

	/* the kernel binary itself */
	i += thrift.Binary.WriteFieldBegin(b[i:], thrift.STRING, _F_binary)
	i += thrift.Binary.WriteBinary(b[i:], p.Binary)
	i += thrift.Binary.WriteFieldStop(b[i:])
	return b[:i]
}

// DecodeProgram parses a program written by EncodeProgram, and returns the
// number of bytes consumed.
func DecodeProgram(buf []byte) (*Program, int, error) {
	i := 0
	p := new(Program)

	/* scan every field until STOP */
	for {
		tt, id, n, err := thrift.Binary.ReadFieldBegin(buf[i:])
		if err != nil {
			return nil, i, fmt.Errorf("kernel: read field header: %w", err)
		}

		/* end of struct */
		i += n
		if tt == thrift.STOP {
			break
		}

		/* decode the field */
		switch {
		case id == _F_simd && tt == thrift.I32:
			v, l, err := thrift.Binary.ReadI32(buf[i:])
			if err != nil {
				return nil, i, fmt.Errorf("kernel: read SIMD width: %w", err)
			}
			if p.SIMD = defs.FromLanes(int(v)); !p.SIMD.IsValid() {
				return nil, i, fmt.Errorf("kernel: invalid SIMD width %d", v)
			}
			i += l
		case id == _F_spillCost && tt == thrift.DOUBLE:
			v, l, err := thrift.Binary.ReadDouble(buf[i:])
			if err != nil {
				return nil, i, fmt.Errorf("kernel: read spill cost: %w", err)
			}
			p.SpillCost = float32(v)
			i += l
		case id == _F_spillSize && tt == thrift.I32:
			v, l, err := thrift.Binary.ReadI32(buf[i:])
			if err != nil {
				return nil, i, fmt.Errorf("kernel: read spill size: %w", err)
			}
			p.SpillSize = uint32(v)
			i += l
		case id == _F_binary && tt == thrift.STRING:
			v, l, err := thrift.Binary.ReadBinary(buf[i:])
			if err != nil {
				return nil, i, fmt.Errorf("kernel: read binary: %w", err)
			}
			p.Binary = v
			i += l
		default:
			return nil, i, fmt.Errorf("kernel: unexpected field %d of type %d", id, tt)
		}
	}

	/* the SIMD width is mandatory */
	if !p.SIMD.IsValid() {
		return nil, i, errMissingSIMD
	}
	return p, i, nil
}
