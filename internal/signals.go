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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/plant"
)

type signalKind int

const (
	sigAmbient signalKind = iota
	sigHeatDemand
	sigSHDemand
	sigDHWDemand
	sigPV
	sigCHPElec
	sigElDemand
	sigSurplus
	sigSensor
	sigMean
)

var scalarSignals = map[string]signalKind{
	"ambient":     sigAmbient,
	"heat_demand": sigHeatDemand,
	"sh_demand":   sigSHDemand,
	"dhw_demand":  sigDHWDemand,
	"pv":          sigPV,
	"chp_el":      sigCHPElec,
	"el_demand":   sigElDemand,
	"surplus":     sigSurplus,
}

// Signal is a value a switching condition can look at. Power signals are
// in W, temperatures in °C, surplus is 1 or 0.
type Signal struct {
	name   string
	kind   signalKind
	tank   int
	sensor int
}

func (s Signal) String() string {
	return s.name
}

// ParseSignal resolves a signal name against the configured tanks.
func ParseSignal(name string, tanks []*config.TankConfig) (Signal, error) {
	if k, ok := scalarSignals[name]; ok {
		return Signal{name: name, kind: k}, nil
	}

	tank, field, ok := strings.Cut(name, ".")
	if !ok || !strings.HasPrefix(tank, "tank") {
		return Signal{}, plant.NewConfigurationError("signal", "unknown signal `%s`", name)
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(tank, "tank"))
	if err != nil || idx < 0 || idx >= len(tanks) {
		return Signal{}, plant.NewConfigurationError("signal", "`%s` refers to a missing tank", name)
	}

	if field == "mean" {
		return Signal{name: name, kind: sigMean, tank: idx}, nil
	}
	if !strings.HasPrefix(field, "sensor_") {
		return Signal{}, plant.NewConfigurationError("signal", "unknown tank signal `%s`", name)
	}
	sensor, err := strconv.Atoi(strings.TrimPrefix(field, "sensor_"))
	if err != nil || sensor < 0 || sensor >= tanks[idx].Layers {
		return Signal{}, plant.NewConfigurationError("signal", "`%s` refers to a missing sensor", name)
	}
	return Signal{name: name, kind: sigSensor, tank: idx, sensor: sensor}, nil
}

// Operator is a comparison of a signal against a constant.
type Operator int

const (
	Less Operator = iota
	Greater
	LessEqual
	GreaterEqual
)

var operatorNames = map[string]Operator{
	"<":  Less,
	">":  Greater,
	"<=": LessEqual,
	">=": GreaterEqual,
	"≤":  LessEqual,
	"≥":  GreaterEqual,
}

func ParseOperator(s string) (Operator, error) {
	op, ok := operatorNames[strings.TrimSpace(s)]
	if !ok {
		return 0, plant.NewConfigurationError("op", "unknown operator `%s`", s)
	}
	return op, nil
}

func (o Operator) String() string {
	switch o {
	case Less:
		return "<"
	case Greater:
		return ">"
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Apply compares a with b. A NaN operand never satisfies a comparison.
func (o Operator) Apply(a, b float64) bool {
	switch o {
	case Less:
		return a < b
	case Greater:
		return a > b
	case LessEqual:
		return a <= b
	case GreaterEqual:
		return a >= b
	}
	return false
}

type Condition struct {
	Signal Signal
	Op     Operator
	Value  float64
}

func (c Condition) String() string {
	return c.Signal.String() + " " + c.Op.String() + " " + strconv.FormatFloat(c.Value, 'g', -1, 64)
}

func (c Condition) Holds(s *signals) bool {
	return c.Op.Apply(s.value(c.Signal), c.Value)
}

func parseConditions(field string, in []*config.ConditionConfig, tanks []*config.TankConfig) ([]Condition, error) {
	out := make([]Condition, 0, len(in))
	for i, cc := range in {
		sig, err := ParseSignal(cc.Signal, tanks)
		if err != nil {
			return nil, conditionError(field, i, err)
		}
		op, err := ParseOperator(cc.Op)
		if err != nil {
			return nil, conditionError(field, i, err)
		}
		out = append(out, Condition{Signal: sig, Op: op, Value: cc.Value})
	}
	return out, nil
}

func conditionError(field string, i int, err error) error {
	reason := err.Error()
	var ce *plant.ConfigurationError
	if errors.As(err, &ce) {
		reason = ce.Reason
	}
	return plant.NewConfigurationError(field+"["+strconv.Itoa(i)+"]", "%s", reason)
}

// withField prefixes the field of a configuration error.
func withField(field string, err error) error {
	var ce *plant.ConfigurationError
	if errors.As(err, &ce) {
		return plant.NewConfigurationError(field+"."+ce.Field, "%s", ce.Reason)
	}
	return errors.WithMessage(err, field)
}

func anyHolds(conds []Condition, s *signals) bool {
	for _, c := range conds {
		if c.Holds(s) {
			return true
		}
	}
	return false
}

// signals is the view of one step the conditions and policies read from.
type signals struct {
	ambient  float64
	heat     float64
	sh       float64
	dhw      float64
	pv       float64
	chpElec  float64
	elDemand float64
	ctx      Context
	tanks    []*plant.Tank
}

func (s *signals) value(sig Signal) float64 {
	switch sig.kind {
	case sigAmbient:
		return s.ambient
	case sigHeatDemand:
		return s.heat
	case sigSHDemand:
		return s.sh
	case sigDHWDemand:
		return s.dhw
	case sigPV:
		return s.pv
	case sigCHPElec:
		return s.chpElec
	case sigElDemand:
		return s.elDemand
	case sigSurplus:
		if s.ctx.Surplus {
			return 1
		}
		return 0
	case sigSensor:
		return s.tanks[sig.tank].Layer(sig.sensor)
	case sigMean:
		return s.tanks[sig.tank].MeanTemp
	}
	return math.NaN()
}

// layer reads a configured sensor.
func (s *signals) layer(ref config.SensorRef) float64 {
	return s.tanks[ref.Tank].Layer(ref.Sensor)
}
