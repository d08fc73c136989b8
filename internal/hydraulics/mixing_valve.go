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

import (
	"math"

	"github.com/antst/thermoplant/internal/plant"
)

// Unknown marks an outlet temperature that has not been measured yet.
var Unknown = math.NaN()

// SizeFlow is the mass flow carrying demand W across dT K. A non-positive
// demand or temperature difference gives zero flow.
func SizeFlow(demand, dT float64) float64 {
	if demand <= 0 || dT <= 0 || math.IsNaN(demand) || math.IsNaN(dT) {
		return 0
	}
	return demand / (plant.WaterCp * dT)
}

// MixResult is the split of a supply flow between the hot and cold branch of
// a mixing valve and the temperature of the blend.
type MixResult struct {
	HotFlow    float64
	ColdFlow   float64
	SupplyTemp float64
}

func (r MixResult) Total() float64 {
	return r.HotFlow + r.ColdFlow
}

// MixingValve blends a hot and a cold tank outlet to a target supply
// temperature. MaxFlow bounds each branch, zero means unbounded.
type MixingValve struct {
	MaxFlow float64
}

// Flows returns the branch flows for a circuit asking for total kg/s at
// target °C with a return temperature of target-dT.
func (v MixingValve) Flows(hot, cold, target, total, dT float64) MixResult {
	if total <= 0 {
		return MixResult{}
	}
	if math.IsNaN(hot) {
		return MixResult{ColdFlow: total, SupplyTemp: cold}
	}

	ret := target - dT
	switch {
	case cold > target:
		return MixResult{ColdFlow: v.limit(rescale(total, dT, cold-ret)), SupplyTemp: cold}
	case hot < target && cold < target:
		return MixResult{HotFlow: v.limit(rescale(total, dT, hot-ret)), SupplyTemp: hot}
	}

	r := 1.0
	if hot != cold {
		r = (target - cold) / (hot - cold)
	}
	res := MixResult{HotFlow: r * total, ColdFlow: (1 - r) * total, SupplyTemp: target}
	if v.MaxFlow > 0 && (res.HotFlow > v.MaxFlow || res.ColdFlow > v.MaxFlow) {
		res = v.capped(res, hot, cold, ret, total*dT)
	}
	return res
}

// capped limits the branch over MaxFlow and solves the other one so that
// the blend still carries the requested heat (flow*K, cp omitted).
func (v MixingValve) capped(res MixResult, hot, cold, ret, heat float64) MixResult {
	if res.HotFlow > v.MaxFlow {
		res.HotFlow = v.MaxFlow
		res.ColdFlow = v.limit(branch(heat-res.HotFlow*(hot-ret), cold-ret))
	}
	if res.ColdFlow > v.MaxFlow {
		res.ColdFlow = v.MaxFlow
		res.HotFlow = v.limit(branch(heat-res.ColdFlow*(cold-ret), hot-ret))
	}
	res.SupplyTemp = blend(res.HotFlow, hot, res.ColdFlow, cold)
	return res
}

func (v MixingValve) limit(flow float64) float64 {
	if flow < 0 {
		return 0
	}
	if v.MaxFlow > 0 && flow > v.MaxFlow {
		return v.MaxFlow
	}
	return flow
}

// rescale keeps the delivered heat of total kg/s at nominal dT when the
// water actually arrives with actual K above return.
func rescale(total, dT, actual float64) float64 {
	if actual <= 0 || dT <= 0 {
		return 0
	}
	return total * dT / actual
}

func branch(heat, dT float64) float64 {
	if dT <= 0 || heat <= 0 {
		return 0
	}
	return heat / dT
}

func blend(f1, t1, f2, t2 float64) float64 {
	if f1+f2 <= 0 {
		return 0
	}
	return (f1*t1 + f2*t2) / (f1 + f2)
}
