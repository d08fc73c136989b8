/*
 * Copyright (c) 2023. Anton Starikov -- All Rights Reserved
 *
 * This file is part of THERMOPLANT project.
 *
 * THERMOPLANT is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as the Free Software Foundation,
 * either version 3 of the License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package hydraulics

// Splitter is a three-way valve dividing one inflow between two outputs at
// the same temperature.
type Splitter struct {
	Out1Share float64
}

func NewSplitter(out1Share float64) Splitter {
	if out1Share < 0 {
		out1Share = 0
	}
	if out1Share > 1 {
		out1Share = 1
	}
	return Splitter{Out1Share: out1Share}
}

func (s Splitter) Split(in float64) (out1, out2 float64) {
	out1 = in * s.Out1Share
	return out1, in - out1
}
