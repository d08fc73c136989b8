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

package plant

import "math"

// WaterCp is the specific heat capacity of water, J/(kg*K).
const WaterCp = 4184.0

// BalanceTolerance bounds |net flow| of a balanced tank, kg/s.
const BalanceTolerance = 1e-5

// Tank is one stratified storage tank. Layers are ordered bottom (sensor 0) to top.
type Tank struct {
	Index    int
	Mass     float64
	MeanTemp float64
	Layers   []float64
	Ports    [NumPorts]Port
}

func NewTank(index, layers int, mass float64) *Tank {
	return &Tank{Index: index, Mass: mass, Layers: make([]float64, layers)}
}

func (t *Tank) Bottom() float64 {
	return t.Layer(0)
}

func (t *Tank) Top() float64 {
	return t.Layer(len(t.Layers) - 1)
}

// Layer returns the temperature of sensor i, NaN when the tank has no such sensor.
func (t *Tank) Layer(i int) float64 {
	if i < 0 || i >= len(t.Layers) {
		return math.NaN()
	}
	return t.Layers[i]
}

func (t *Tank) Port(id PortID) *Port {
	return &t.Ports[id]
}

// NetFlow is the signed sum of all port flows.
func (t *Tank) NetFlow() float64 {
	var sum float64
	for i := range t.Ports {
		sum += t.Ports[i].Flow
	}
	return sum
}

// ResetFlows zeroes every port flow and keeps the temperatures.
func (t *Tank) ResetFlows() {
	for i := range t.Ports {
		t.Ports[i].Flow = 0
	}
}

// Draw accounts an outflow of flow kg/s through port id.
func (t *Tank) Draw(id PortID, flow float64) {
	t.Ports[id].Flow -= flow
}

// Feed accounts an inflow of flow kg/s at temperature temp through port id.
// The port temperature becomes the flow-weighted mix of everything fed so far.
func (t *Tank) Feed(id PortID, flow, temp float64) {
	p := &t.Ports[id]
	total := p.Flow + flow
	if flow > 0 && total > 0 {
		p.Temp = (p.Flow*p.Temp + flow*temp) / total
	}
	p.Flow = total
}
