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

import "github.com/antst/thermoplant/internal/plant"

// TankConfig describes one storage tank of the chain, in link order.
type TankConfig struct {
	Mass   float64 `yaml:"mass"`
	Layers int     `yaml:"layers"`
	// HeaterSetpoint enables the built-in electric heater of the tank.
	HeaterSetpoint *float64 `yaml:"heater_setpoint,omitempty"`
}

func (t *TankConfig) FillDefaults() {
	if t.Layers <= 0 {
		t.Layers = defaultLayers
	}
}

func (t *TankConfig) Validate(field string) error {
	if t.Mass <= 0 {
		return plant.NewConfigurationError(field+".mass", "must be positive")
	}
	return nil
}

// SensorRef points at one layer sensor of a tank.
type SensorRef struct {
	Tank   int `yaml:"tank"`
	Sensor int `yaml:"sensor"`
}

func (s SensorRef) validate(field string, tanks []*TankConfig) error {
	if s.Tank < 0 || s.Tank >= len(tanks) {
		return plant.NewConfigurationError(field+".tank", "no tank%d", s.Tank)
	}
	if s.Sensor < 0 || s.Sensor >= tanks[s.Tank].Layers {
		return plant.NewConfigurationError(field+".sensor", "tank%d has no sensor_%d", s.Tank, s.Sensor)
	}
	return nil
}

func validTank(field string, idx int, tanks []*TankConfig) error {
	if idx < 0 || idx >= len(tanks) {
		return plant.NewConfigurationError(field, "no tank%d", idx)
	}
	return nil
}
