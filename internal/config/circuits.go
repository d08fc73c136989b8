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

package config

import (
	"github.com/antst/thermoplant/internal/plant"
	"github.com/antst/thermoplant/internal/thermo_model"
)

const (
	Topology2Runner = "2-runner"
	Topology3Runner = "3-runner"
	Topology4Runner = "4-runner"

	defaultTopology   = Topology3Runner
	defaultBuilding   = "renovated"
	defaultSHDeltaT   = 7.0
	defaultDHWSupply  = 55.0
	defaultDHWDeltaT  = 20.0
	defaultReturnTank = 0
)

// CircuitConfig is one consumer circuit. Tank is the tank the circuit draws
// its primary supply from.
type CircuitConfig struct {
	Tank       *int     `yaml:"tank"`
	SupplyTemp *float64 `yaml:"supply_temp,omitempty"`
	DeltaT     *float64 `yaml:"delta_t"`
}

// CircuitsConfig describes the space heating and domestic hot water circuits.
type CircuitsConfig struct {
	Topology   string                     `yaml:"topology"`
	Building   string                     `yaml:"building"`
	Curve      *thermo_model.HeatingCurve `yaml:"curve,omitempty"`
	MaxFlow    *float64                   `yaml:"max_flow"`
	ReturnTank *int                       `yaml:"return_tank"`
	SH         *CircuitConfig             `yaml:"sh"`
	DHW        *CircuitConfig             `yaml:"dhw"`
}

func NewCircuitsConfig() *CircuitsConfig {
	return &CircuitsConfig{}
}

// FillDefaults completes the circuits of a plant with tanks tanks: space
// heating draws from the first tank, hot water from the last.
func (c *CircuitsConfig) FillDefaults(tanks int) {
	if c.Topology == "" {
		c.Topology = defaultTopology
	}
	if c.Building == "" {
		c.Building = defaultBuilding
	}
	if c.Curve == nil {
		if curve, ok := thermo_model.DefaultCurve(c.Building); ok {
			c.Curve = &curve
		}
	}
	if c.MaxFlow == nil {
		c.MaxFlow = GetPTR(0.0)
	}
	if c.ReturnTank == nil {
		c.ReturnTank = GetPTR(defaultReturnTank)
	}
	if c.SH == nil {
		c.SH = &CircuitConfig{}
	}
	if c.SH.Tank == nil {
		c.SH.Tank = GetPTR(0)
	}
	if c.SH.DeltaT == nil {
		c.SH.DeltaT = GetPTR(defaultSHDeltaT)
	}
	if c.DHW == nil {
		c.DHW = &CircuitConfig{}
	}
	if c.DHW.Tank == nil {
		c.DHW.Tank = GetPTR(max(tanks-1, 0))
	}
	if c.DHW.SupplyTemp == nil {
		c.DHW.SupplyTemp = GetPTR(defaultDHWSupply)
	}
	if c.DHW.DeltaT == nil {
		c.DHW.DeltaT = GetPTR(defaultDHWDeltaT)
	}
}

func (c *CircuitsConfig) Validate(tanks []*TankConfig) error {
	switch c.Topology {
	case Topology2Runner, Topology3Runner, Topology4Runner:
	default:
		return plant.NewConfigurationError("circuits.topology", "unknown topology `%s`", c.Topology)
	}
	if c.Curve == nil {
		return plant.NewConfigurationError("circuits.building", "no heating curve for `%s`", c.Building)
	}
	if *c.MaxFlow < 0 {
		return plant.NewConfigurationError("circuits.max_flow", "must not be negative")
	}
	if err := validTank("circuits.return_tank", *c.ReturnTank, tanks); err != nil {
		return err
	}
	if err := validTank("circuits.sh.tank", *c.SH.Tank, tanks); err != nil {
		return err
	}
	if err := validTank("circuits.dhw.tank", *c.DHW.Tank, tanks); err != nil {
		return err
	}
	if *c.SH.DeltaT <= 0 {
		return plant.NewConfigurationError("circuits.sh.delta_t", "must be positive")
	}
	if *c.DHW.DeltaT <= 0 {
		return plant.NewConfigurationError("circuits.dhw.delta_t", "must be positive")
	}
	return nil
}
