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
	"time"

	"github.com/antst/thermoplant/internal/plant"
	"github.com/antst/thermoplant/internal/transformer"
)

// TankInput is the measured state of one tank at the start of a step.
type TankInput struct {
	Layers []float64 `yaml:"layers"`
	Mean   *float64  `yaml:"mean,omitempty"`
	Mass   *float64  `yaml:"mass,omitempty"`
	// Ports holds measured port temperatures by port name. Outlet ports
	// without a measurement take the top layer (heat_out, heat_out2) or the
	// bottom layer (generator outlets).
	Ports map[string]float64 `yaml:"ports,omitempty"`
}

// GeneratorInput is what a generator's own model reported for the previous
// step.
type GeneratorInput struct {
	Supply     float64  `yaml:"supply"`
	MassFlow   float64  `yaml:"mass_flow"`
	OnFraction *float64 `yaml:"on_fraction,omitempty"`
	OutletTemp *float64 `yaml:"outlet_temp,omitempty"`
}

// StepInput is delivered once per step. Heat demands and the predicted
// electrical demand are in kW; PV and CHP electrical output in W.
type StepInput struct {
	Time       time.Time                 `yaml:"time"`
	Ambient    float64                   `yaml:"ambient"`
	Tanks      []TankInput               `yaml:"tanks"`
	Generators map[string]GeneratorInput `yaml:"generators,omitempty"`
	HeatDemand *float64                  `yaml:"heat_demand,omitempty"`
	SHDemand   *float64                  `yaml:"sh_demand,omitempty"`
	DHWDemand  *float64                  `yaml:"dhw_demand,omitempty"`
	PV         float64                   `yaml:"pv,omitempty"`
	CHPElec    float64                   `yaml:"chp_el,omitempty"`
	ElDemand   float64                   `yaml:"el_demand,omitempty"`
}

type GeneratorOutput struct {
	Status  plant.Status
	Demand  float64
	Uptime  time.Duration
	Started bool
	// Measured feedback the decision was based on.
	Supply     float64
	MassFlow   float64
	OutletTemp float64
}

// CircuitReport describes how a consumer circuit was served in one step.
type CircuitReport struct {
	Demand     float64
	SupplyTemp float64
	ReturnTemp float64
	Achieved   float64
	HotFlow    float64
	ColdFlow   float64
	RodPower   float64
	Deficit    bool
}

func (r CircuitReport) Flow() float64 {
	return r.HotFlow + r.ColdFlow
}

type StepOutput struct {
	Time    time.Time
	Elapsed time.Duration
	Context Context

	Generators map[plant.GeneratorKind]GeneratorOutput
	Tanks      [][plant.NumPorts]plant.Port

	SH  CircuitReport
	DHW CircuitReport

	IdealHeaterPower float64
	TankHeaters      []float64

	// Produced holds the output of simulated generator models for this step;
	// it reaches the controller with the next step.
	Produced map[plant.GeneratorKind]transformer.Output
}
