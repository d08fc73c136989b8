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
	"fmt"
	"time"

	"github.com/antst/thermoplant/internal/plant"
	"github.com/antst/thermoplant/internal/transformer"
)

const (
	PolicyThreshold = "threshold"
	PolicySeasonal  = "seasonal"
	PolicyCHP       = "chp"
	PolicyBackup    = "backup"

	SizingDeficit    = "deficit"
	SizingHeatDemand = "heat_demand"

	defaultMinRuntime  = 15 * time.Minute
	defaultHysteresis  = 5.0
	defaultEngageDelay = 10 * time.Minute
)

// SetpointConfig is a hysteresis band on one tank sensor. High defaults to
// Low plus 5 K.
type SetpointConfig struct {
	SensorRef `yaml:",inline"`
	Low       *float64 `yaml:"low"`
	High      *float64 `yaml:"high"`
}

func (c *SetpointConfig) FillDefaults() {
	if c.Low != nil && c.High == nil {
		c.High = GetPTR(*c.Low + defaultHysteresis)
	}
}

func (c *SetpointConfig) Validate(field string, tanks []*TankConfig) error {
	if c.Low == nil {
		return plant.NewConfigurationError(field+".low", "required")
	}
	if *c.High < *c.Low {
		return plant.NewConfigurationError(field+".high", "%.1f below low setpoint %.1f", *c.High, *c.Low)
	}
	return c.SensorRef.validate(field, tanks)
}

// SeasonalConfig holds one setpoint band per season and time of day. Night
// bands default to the day band, summer bands to the winter ones.
type SeasonalConfig struct {
	WinterDay       *SetpointConfig `yaml:"winter_day"`
	WinterNight     *SetpointConfig `yaml:"winter_night,omitempty"`
	SummerDay       *SetpointConfig `yaml:"summer_day,omitempty"`
	SummerNight     *SetpointConfig `yaml:"summer_night,omitempty"`
	SurplusSetpoint *float64        `yaml:"surplus_setpoint,omitempty"`
}

func (c *SeasonalConfig) FillDefaults() {
	if c.WinterDay == nil {
		return
	}
	if c.WinterNight == nil {
		c.WinterNight = c.WinterDay
	}
	if c.SummerDay == nil {
		c.SummerDay = c.WinterDay
	}
	if c.SummerNight == nil {
		c.SummerNight = c.SummerDay
	}
	for _, s := range c.Sets() {
		s.FillDefaults()
	}
}

// Sets lists the bands as winter day, winter night, summer day, summer night.
func (c *SeasonalConfig) Sets() []*SetpointConfig {
	return []*SetpointConfig{c.WinterDay, c.WinterNight, c.SummerDay, c.SummerNight}
}

// CHPConfig keeps the hot water tank charged: on below Setpoint+Buffer at the
// top sensor, off once the bottom sensor reaches Setpoint.
type CHPConfig struct {
	Tank     int      `yaml:"tank"`
	Setpoint float64  `yaml:"setpoint"`
	Buffer   *float64 `yaml:"buffer"`
}

// BackupConfig engages a generator when the CHP has failed to hold its tank
// for longer than EngageDelay while the top of GuardTank is still below the
// setpoint. Tank and Setpoint default to the CHP's, GuardTank to the tank
// of the hot water circuit.
type BackupConfig struct {
	EngageDelay *time.Duration `yaml:"engage_delay"`
	Sizing      string         `yaml:"sizing"`
	Tank        *int           `yaml:"tank,omitempty"`
	Setpoint    *float64       `yaml:"setpoint,omitempty"`
	GuardTank   *int           `yaml:"guard_tank,omitempty"`
}

// ConditionConfig compares a named signal against Value, e.g.
// `{signal: ambient, op: "<", value: -5}`.
type ConditionConfig struct {
	Signal string  `yaml:"signal"`
	Op     string  `yaml:"op"`
	Value  float64 `yaml:"value"`
}

func (c ConditionConfig) String() string {
	return fmt.Sprintf("%s %s %g", c.Signal, c.Op, c.Value)
}

// ConnectionConfig wires a generator to the tanks. It draws from Out and
// returns into In; with two return ports Split is the share of the first.
type ConnectionConfig struct {
	Out   plant.PortRef   `yaml:"out"`
	In    []plant.PortRef `yaml:"in"`
	Split *float64        `yaml:"split,omitempty"`
}

// ModelConfig parameterises the output model of a generator whose feedback
// is simulated rather than measured.
type ModelConfig struct {
	Stages       []float64     `yaml:"stages,omitempty"`
	NominalPower *float64      `yaml:"nominal_power,omitempty"`
	OpStages     []float64     `yaml:"op_stages,omitempty"`
	NominalElec  *float64      `yaml:"nominal_elec,omitempty"`
	StartupCoeff []float64     `yaml:"startup_coeff,omitempty"`
	StartupLimit time.Duration `yaml:"startup_limit,omitempty"`
	Cp           *float64      `yaml:"cp,omitempty"`
	SetTemp      *float64      `yaml:"set_temp,omitempty"`
	SetFlow      *float64      `yaml:"set_flow,omitempty"`
	Efficiency   *float64      `yaml:"efficiency,omitempty"`
	HeatingValue *float64      `yaml:"heating_value,omitempty"`
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func (m *ModelConfig) Params(step time.Duration) transformer.Params {
	return transformer.Params{
		Stages:       m.Stages,
		NominalPower: deref(m.NominalPower),
		OpStages:     m.OpStages,
		NominalElec:  deref(m.NominalElec),
		StartupCoeff: m.StartupCoeff,
		StartupLimit: m.StartupLimit,
		Cp:           deref(m.Cp),
		SetTemp:      m.SetTemp,
		SetFlow:      m.SetFlow,
		Efficiency:   deref(m.Efficiency),
		HeatingValue: deref(m.HeatingValue),
		Step:         step,
	}
}

type GeneratorConfig struct {
	Policy        string             `yaml:"policy"`
	MinRuntime    *time.Duration     `yaml:"min_runtime"`
	Setpoint      *SetpointConfig    `yaml:"setpoint,omitempty"`
	Seasonal      *SeasonalConfig    `yaml:"seasonal,omitempty"`
	CHP           *CHPConfig         `yaml:"chp,omitempty"`
	Backup        *BackupConfig      `yaml:"backup,omitempty"`
	OnConditions  []*ConditionConfig `yaml:"on_conditions,omitempty"`
	OffConditions []*ConditionConfig `yaml:"off_conditions,omitempty"`
	Connection    *ConnectionConfig  `yaml:"connection,omitempty"`
	Model         *ModelConfig       `yaml:"model,omitempty"`
}

func (g *GeneratorConfig) FillDefaults() {
	if g.Policy == "" {
		switch {
		case g.Seasonal != nil:
			g.Policy = PolicySeasonal
		case g.CHP != nil:
			g.Policy = PolicyCHP
		case g.Backup != nil:
			g.Policy = PolicyBackup
		default:
			g.Policy = PolicyThreshold
		}
	}
	if g.MinRuntime == nil {
		g.MinRuntime = GetPTR(defaultMinRuntime)
	}
	if g.Setpoint != nil {
		g.Setpoint.FillDefaults()
	}
	if g.Seasonal != nil {
		g.Seasonal.FillDefaults()
	}
	if g.CHP != nil && g.CHP.Buffer == nil {
		g.CHP.Buffer = GetPTR(0.0)
	}
	if g.Backup != nil {
		if g.Backup.EngageDelay == nil {
			g.Backup.EngageDelay = GetPTR(defaultEngageDelay)
		}
		if g.Backup.Sizing == "" {
			g.Backup.Sizing = SizingDeficit
		}
	}
	if c := g.Connection; c != nil && c.Split == nil {
		c.Split = GetPTR(1.0)
		if len(c.In) == 2 {
			c.Split = GetPTR(0.5)
		}
	}
}

func (g *GeneratorConfig) Validate(kind plant.GeneratorKind, cfg *Config) error {
	field := "generators." + kind.String()
	if *g.MinRuntime < 0 {
		return plant.NewConfigurationError(field+".min_runtime", "must not be negative")
	}

	switch g.Policy {
	case PolicyThreshold:
		if g.Setpoint == nil {
			return plant.NewConfigurationError(field+".setpoint", "required by the %s policy", g.Policy)
		}
		if err := g.Setpoint.Validate(field+".setpoint", cfg.Tanks); err != nil {
			return err
		}
	case PolicySeasonal:
		if kind != plant.HeatPump {
			return plant.NewConfigurationError(field+".policy", "%s policy is only available for the heat pump", g.Policy)
		}
		if g.Seasonal == nil || g.Seasonal.WinterDay == nil {
			return plant.NewConfigurationError(field+".seasonal.winter_day", "required by the %s policy", g.Policy)
		}
		for _, s := range g.Seasonal.Sets() {
			if err := s.Validate(field+".seasonal", cfg.Tanks); err != nil {
				return err
			}
		}
	case PolicyCHP:
		if g.CHP == nil {
			return plant.NewConfigurationError(field+".chp", "required by the %s policy", g.Policy)
		}
		if err := validTank(field+".chp.tank", g.CHP.Tank, cfg.Tanks); err != nil {
			return err
		}
	case PolicyBackup:
		if g.Backup == nil {
			return plant.NewConfigurationError(field+".backup", "required by the %s policy", g.Policy)
		}
		chp := cfg.Generator(plant.CHP)
		if kind == plant.CHP || chp == nil || chp.Policy != PolicyCHP {
			return plant.NewConfigurationError(field+".policy", "%s policy needs a CHP under the %s policy", g.Policy, PolicyCHP)
		}
		switch g.Backup.Sizing {
		case SizingDeficit, SizingHeatDemand:
		default:
			return plant.NewConfigurationError(field+".backup.sizing", "unknown sizing `%s`", g.Backup.Sizing)
		}
		if g.Backup.Tank != nil {
			if err := validTank(field+".backup.tank", *g.Backup.Tank, cfg.Tanks); err != nil {
				return err
			}
		}
		if g.Backup.GuardTank != nil {
			if err := validTank(field+".backup.guard_tank", *g.Backup.GuardTank, cfg.Tanks); err != nil {
				return err
			}
		}
	default:
		return plant.NewConfigurationError(field+".policy", "unknown policy `%s`", g.Policy)
	}

	for _, c := range append(append([]*ConditionConfig(nil), g.OnConditions...), g.OffConditions...) {
		if c == nil || c.Signal == "" {
			return plant.NewConfigurationError(field+".conditions", "condition without signal")
		}
	}

	if c := g.Connection; c != nil {
		if len(c.In) == 0 || len(c.In) > 2 {
			return plant.NewConfigurationError(field+".connection.in", "one or two return ports, got %d", len(c.In))
		}
		for _, r := range append([]plant.PortRef{c.Out}, c.In...) {
			if err := validTank(field+".connection", r.Tank, cfg.Tanks); err != nil {
				return err
			}
		}
		if *c.Split < 0 || *c.Split > 1 {
			return plant.NewConfigurationError(field+".connection.split", "%.2f outside [0, 1]", *c.Split)
		}
	}

	if g.Model != nil {
		if _, err := transformer.New(g.Model.Params(cfg.Step)); err != nil {
			return err
		}
	}
	return nil
}
