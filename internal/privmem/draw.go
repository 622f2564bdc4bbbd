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
	"io"

	"github.com/ajstarks/svgo"
)

const (
	_RowHeight = 24
	_BarWidth  = 480
	_LabelGap  = 120
)

// DrawLedger renders the ledger as one bar per block, scaled against limit
// bytes, with the part above the limit drawn in red.
func DrawLedger(w io.Writer, l *Ledger, limit uint64) {
	maxv := limit
	rows := len(l.order)

	/* find the widest bar */
	for _, bb := range l.order {
		if v, ok := l.Peek(bb); ok && uint64(v) > maxv {
			maxv = uint64(v)
		}
	}

	/* avoid dividing by zero */
	if maxv == 0 {
		maxv = 1
	}

	/* canvas */
	p := svg.New(w)
	p.Start(_LabelGap+_BarWidth+100, rows*_RowHeight+100)
	p.Rect(0, 0, _LabelGap+_BarWidth+100, rows*_RowHeight+100, "fill:white")

	/* the limit line */
	lx := _LabelGap + int(uint64(_BarWidth)*limit/maxv)
	p.Line(lx, 40, lx, rows*_RowHeight+60, "stroke:gray;stroke-dasharray:4")
	p.Text(lx, 30, fmt.Sprintf("%d", limit), "fill:gray;font-size:14px;font-family:monospace;text-anchor:middle")

	/* one bar per block, unvisited blocks stay empty */
	for i, bb := range l.order {
		y := 60 + i*_RowHeight
		p.Text(16, y+16, bb.Ident(), "fill:black;font-size:16px;font-family:monospace")

		/* no entry yet */
		v, ok := l.Peek(bb)
		if !ok {
			p.Line(_LabelGap, y+10, _LabelGap+_BarWidth, y+10, "stroke:lightgray")
			continue
		}

		/* the bar */
		bw := int(uint64(_BarWidth) * uint64(v) / maxv)
		if uint64(v) <= limit {
			p.Rect(_LabelGap, y, bw, _RowHeight-6, "fill:steelblue")
		} else {
			p.Rect(_LabelGap, y, lx-_LabelGap, _RowHeight-6, "fill:steelblue")
			p.Rect(lx, y, bw-(lx-_LabelGap), _RowHeight-6, "fill:firebrick")
		}
		p.Text(_LabelGap+bw+8, y+16, fmt.Sprintf("%d", v), "fill:black;font-size:14px;font-family:monospace")
	}
	p.End()
}
