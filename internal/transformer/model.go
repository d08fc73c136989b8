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

package transformer

import (
	"math"
	"sort"
	"time"

	"github.com/antst/thermoplant/internal/plant"
	"github.com/antst/thermoplant/internal/thermo_model"
)

const (
	// DefaultCp is the heat capacity used on the generator side, J/(kg*K).
	DefaultCp = 4187.0
	// DefaultHeatingValue of natural gas, Wh/m3.
	DefaultHeatingValue = 10833.3
)

// Params describes one heat source. Either Stages or NominalPower (with
// OpStages as fractions of it) defines the capacity table. Exactly one of
// SetTemp and SetFlow fixes the hydraulic side.
type Params struct {
	Stages       []float64
	NominalPower float64
	OpStages     []float64
	NominalElec  float64

	// StartupCoeff is a polynomial in minutes since turn-on giving kW,
	// intercept first. It is used while uptime < StartupLimit.
	StartupCoeff []float64
	StartupLimit time.Duration

	Cp           float64
	SetTemp      *float64
	SetFlow      *float64
	Efficiency   float64
	HeatingValue float64
	Step         time.Duration
}

type Input struct {
	Status    plant.Status
	Demand    float64
	InletTemp float64
}

type Output struct {
	Power      float64
	Elec       float64
	MassFlow   float64
	OutletTemp float64
	Fuel       float64
	Uptime     time.Duration
}

// Model turns a status/demand pair into the thermal output a generator
// actually achieves.
type Model struct {
	p          Params
	stages     []float64
	elecShare  float64
	lastStatus plant.Status
	onSince    time.Duration
}

func New(p Params) (*Model, error) {
	if p.Cp <= 0 {
		p.Cp = DefaultCp
	}
	if p.HeatingValue <= 0 {
		p.HeatingValue = DefaultHeatingValue
	}
	if len(p.OpStages) == 0 {
		p.OpStages = []float64{0, 1}
	}
	if p.Step <= 0 {
		return nil, plant.NewConfigurationError("step", "must be positive")
	}

	stages := p.Stages
	if len(stages) == 0 {
		if p.NominalPower <= 0 {
			return nil, plant.NewConfigurationError("stages", "either stages or nominal_power has to be defined")
		}
		stages = make([]float64, len(p.OpStages))
		for i, s := range p.OpStages {
			stages[i] = s * p.NominalPower
		}
	}
	if !sort.Float64sAreSorted(stages) {
		return nil, plant.NewConfigurationError("stages", "must be ascending, got %v", stages)
	}

	switch {
	case p.SetTemp == nil && p.SetFlow == nil:
		return nil, plant.NewConfigurationError("set_temp", "one of set_temp or set_flow has to be defined")
	case p.SetTemp != nil && p.SetFlow != nil:
		return nil, plant.NewConfigurationError("set_flow", "set_temp and set_flow are mutually exclusive")
	case p.SetFlow != nil && *p.SetFlow <= 0:
		return nil, plant.NewConfigurationError("set_flow", "must be positive")
	}

	if len(p.StartupCoeff) > 0 && p.StartupLimit <= 0 {
		return nil, plant.NewConfigurationError("startup_limit", "required with startup_coeff")
	}

	m := &Model{p: p, stages: stages}
	if p.NominalElec > 0 {
		m.elecShare = p.NominalElec / m.Nominal()
	}
	return m, nil
}

// Nominal is the top stage of the capacity table, W.
func (m *Model) Nominal() float64 {
	return m.stages[len(m.stages)-1]
}

func (m *Model) Stages() []float64 {
	return append([]float64(nil), m.stages...)
}

// ElecShare is the electrical output per W of thermal output.
func (m *Model) ElecShare() float64 {
	return m.elecShare
}

// Step computes the output at simulation time now. Uptime counts from the
// first call that sees the generator on, so repeating a call with the same
// now yields the same output.
func (m *Model) Step(now time.Duration, in Input) Output {
	var out Output

	if in.Status == plant.On {
		if m.lastStatus != plant.On {
			m.onSince = now
		}
		out.Uptime = now - m.onSince
		out.Power = m.thermal(in.Demand, out.Uptime)
	}
	m.lastStatus = in.Status

	m.hydraulics(&out, in.InletTemp)
	out.Elec = out.Power * m.elecShare
	if m.p.Efficiency > 0 {
		out.Fuel = out.Power * m.p.Step.Hours() / (m.p.Efficiency * m.p.HeatingValue)
	}
	return out
}

func (m *Model) thermal(demand float64, uptime time.Duration) float64 {
	p := SelectStage(m.stages, demand)

	limit := m.p.StartupLimit
	if limit <= 0 {
		return p
	}
	if len(m.p.StartupCoeff) > 0 && uptime < limit {
		p = math.Max(0, thermo_model.Polynomial(m.p.StartupCoeff, uptime.Minutes())*1000)
	}
	if m.p.Step > limit && uptime == 0 {
		// a step coarser than the ramp: half the nominal power during the
		// ramp, full power for the rest of the step
		stepH, limitH := m.p.Step.Hours(), limit.Hours()
		p = (0.5*limitH*m.Nominal() + (stepH-limitH)*m.Nominal()) / stepH
	}
	return p
}

func (m *Model) hydraulics(out *Output, inlet float64) {
	if m.p.SetTemp != nil {
		out.OutletTemp = *m.p.SetTemp
		if dT := out.OutletTemp - inlet; dT > 0 {
			out.MassFlow = out.Power / (m.p.Cp * dT)
		}
		return
	}
	out.MassFlow = *m.p.SetFlow
	out.OutletTemp = inlet + out.Power/(out.MassFlow*m.p.Cp)
}

// SelectStage picks the smallest stage covering demand, or the largest one
// when nothing does.
func SelectStage(stages []float64, demand float64) float64 {
	if len(stages) == 0 {
		return 0
	}
	i := sort.SearchFloat64s(stages, demand)
	if i == len(stages) {
		return stages[len(stages)-1]
	}
	return stages[i]
}
