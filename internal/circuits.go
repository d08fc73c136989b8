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

package internal

import (
	"math"

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/hydraulics"
	"github.com/antst/thermoplant/internal/plant"
	"github.com/antst/thermoplant/internal/thermo_model"
)

// circuits sizes the space heating and hot water loads. Every circuit blends
// the hot water tank's upper outlet with the space heating tank's outlet.
type circuits struct {
	topology   string
	curve      thermo_model.HeatingCurve
	valve      hydraulics.MixingValve
	rod        hydraulics.HeatingRod
	maxFlow    float64
	returnTank int
	shTank     int
	shDeltaT   float64
	dhwTank    int
	dhwSupply  float64
	dhwDeltaT  float64
}

func newCircuits(c *config.CircuitsConfig, idealHeater bool) *circuits {
	return &circuits{
		topology:   c.Topology,
		curve:      *c.Curve,
		valve:      hydraulics.MixingValve{MaxFlow: *c.MaxFlow},
		rod:        hydraulics.HeatingRod{Enabled: idealHeater},
		maxFlow:    *c.MaxFlow,
		returnTank: *c.ReturnTank,
		shTank:     *c.SH.Tank,
		shDeltaT:   *c.SH.DeltaT,
		dhwTank:    *c.DHW.Tank,
		dhwSupply:  *c.DHW.SupplyTemp,
		dhwDeltaT:  *c.DHW.DeltaT,
	}
}

// serve computes both circuits and books their flows on the tanks.
func (c *circuits) serve(s *signals) (sh, dhw CircuitReport) {
	shTarget := c.curve.SupplyTemp(s.ambient)
	hot := s.tanks[c.dhwTank].Port(plant.HeatOut2).Temp
	cold := s.tanks[c.shTank].Port(plant.HeatOut).Temp

	if c.topology == config.Topology2Runner {
		target := shTarget
		if s.dhw > 0 {
			target = math.Max(target, c.dhwSupply)
		}
		sh = c.size(s.heat, target, c.shDeltaT, hot, cold)
		c.book(s.tanks, sh, plant.HeatIn)
		return sh, CircuitReport{}
	}

	sh = c.size(s.sh, shTarget, c.shDeltaT, hot, cold)
	dhw = c.size(s.dhw, c.dhwSupply, c.dhwDeltaT, hot, cold)
	c.book(s.tanks, sh, plant.HeatIn)
	if c.topology == config.Topology4Runner {
		c.book(s.tanks, dhw, plant.HeatIn2)
	} else {
		c.book(s.tanks, dhw, plant.HeatIn)
	}
	return sh, dhw
}

// size serves demand W at target °C with return at target-dT.
func (c *circuits) size(demand, target, dT, hot, cold float64) CircuitReport {
	r := CircuitReport{
		Demand:     demand,
		SupplyTemp: target,
		ReturnTemp: target - dT,
		Achieved:   target,
	}

	total := hydraulics.SizeFlow(demand, dT)
	if c.maxFlow > 0 {
		total = math.Min(total, c.maxFlow)
	}
	if total <= 0 {
		return r
	}

	mix := c.valve.Flows(hot, cold, target, total, dT)
	r.HotFlow, r.ColdFlow, r.Achieved = mix.HotFlow, mix.ColdFlow, mix.SupplyTemp
	r.Deficit = r.Achieved < target-hydraulics.RodTolerance
	if !c.rod.Enabled || !r.Deficit {
		return r
	}

	flow, power := c.rod.Step(r.Achieved, demand, target, r.ReturnTemp)
	if sum := mix.Total(); sum > 0 {
		r.HotFlow *= flow / sum
		r.ColdFlow *= flow / sum
	} else if hot >= cold {
		r.HotFlow = flow
	} else {
		r.ColdFlow = flow
	}
	r.Achieved = target
	r.RodPower = power
	return r
}

// book draws a circuit's branches from their tanks and returns the water
// into the return tank through port in.
func (c *circuits) book(tanks []*plant.Tank, r CircuitReport, in plant.PortID) {
	if r.Flow() <= 0 {
		return
	}
	tanks[c.dhwTank].Draw(plant.HeatOut2, r.HotFlow)
	tanks[c.shTank].Draw(plant.HeatOut, r.ColdFlow)
	tanks[c.returnTank].Feed(in, r.Flow(), r.ReturnTemp)
}
