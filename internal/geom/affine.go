/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

// Mul returns m·n, i.e. n is applied first.
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Det is the determinant of the linear part.
func (m Affine2D) Det() float64 { return m.A*m.D - m.B*m.C }

// Invert returns the inverse transform. ok is false for a singular matrix,
// in which case Identity is returned.
func (m Affine2D) Invert() (inv Affine2D, ok bool) {
	det := m.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Identity, false
	}
	return Affine2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// Aff3 converts m into the row-major layout used by golang.org/x/image/draw.
func (m Affine2D) Aff3() f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// Rotate90 rotates clockwise (y axis pointing down) by q quarter turns.
// Negative values turn counter-clockwise. Coefficients are exact.
func Rotate90(q int) Affine2D {
	switch ((q % 4) + 4) % 4 {
	case 1:
		return Affine2D{B: 1, C: -1}
	case 2:
		return Affine2D{A: -1, D: -1}
	case 3:
		return Affine2D{B: -1, C: 1}
	default:
		return Identity
	}
}

// MirrorX mirrors horizontally about the vertical line x = axis.
func MirrorX(axis float64) Affine2D { return Affine2D{A: -1, D: 1, E: 2 * axis} }

// MirrorY mirrors vertically about the horizontal line y = axis.
func MirrorY(axis float64) Affine2D { return Affine2D{A: 1, D: -1, F: 2 * axis} }
