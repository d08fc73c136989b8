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

import "github.com/antst/thermoplant/internal/plant"

// RodTolerance is how far below the target supply temperature an outlet may
// sit before the ideal heating rod steps in, K.
const RodTolerance = 5.0

// HeatingRod is an idealised inline heater that lifts a circuit's supply to
// its target instantly. It never exists physically; its power quantifies
// what the plant failed to deliver.
type HeatingRod struct {
	Enabled bool
}

// Step sizes the circuit flow and the power the rod has to add.
func (r HeatingRod) Step(outlet, demand, supply, ret float64) (flow, power float64) {
	if r.Enabled && outlet < supply-RodTolerance {
		flow = SizeFlow(demand, supply-ret)
		return flow, flow * plant.WaterCp * (supply - outlet)
	}
	return SizeFlow(demand, outlet-ret), 0
}
