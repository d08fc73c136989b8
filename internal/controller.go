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
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/antst/thermoplant/internal/balance"
	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/plant"
)

const kW = 1000.0

// Controller dispatches the generators of one plant step by step. It owns
// all tank and generator state of a run and is not safe for concurrent use.
type Controller struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	clock     seasonClock
	threshold float64
	circuits  *circuits
	balancer  balance.Balancer
	tanks     []*plant.Tank
	gens      []*dispatcher
	heaters   []*float64

	start   time.Time
	started bool
}

// NewController builds a controller from a completed and validated
// configuration. Switching conditions are resolved here; a bad one is a
// *plant.ConfigurationError.
func NewController(cfg *config.Config, log *zap.SugaredLogger) (*Controller, error) {
	b, err := balance.New(cfg.Balancer)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:       cfg,
		log:       log,
		clock:     newSeasonClock(cfg.Season),
		threshold: *cfg.Surplus.Threshold,
		circuits:  newCircuits(cfg.Circuits, cfg.IdealHeater),
		balancer:  b,
	}

	for i, tc := range cfg.Tanks {
		c.tanks = append(c.tanks, plant.NewTank(i, tc.Layers, tc.Mass))
		c.heaters = append(c.heaters, tc.HeaterSetpoint)
	}

	var chp *chpPolicy
	for _, kind := range plant.Kinds() {
		gc := cfg.Generator(kind)
		if gc == nil {
			continue
		}
		d, err := newDispatcher(kind, gc, cfg, chp, log)
		if err != nil {
			return nil, err
		}
		if p, ok := d.policy.(*chpPolicy); ok {
			chp = p
		}
		c.gens = append(c.gens, d)
	}
	return c, nil
}

// Generator returns the current record of kind, nil when the plant has none.
func (c *Controller) Generator(kind plant.GeneratorKind) *plant.Generator {
	for _, d := range c.gens {
		if d.gen.Kind == kind {
			return d.gen
		}
	}
	return nil
}

// Step advances the plant by one step. A *plant.BalanceError means the tank
// flows could not be balanced and the run has to stop.
func (c *Controller) Step(in StepInput) (*StepOutput, error) {
	if !c.started {
		c.start, c.started = in.Time, true
	}
	now := in.Time.Sub(c.start)

	s := c.signals(in)
	s.ctx = c.clock.at(in.Time)
	s.ctx.Surplus = surplus(s.pv, s.chpElec, s.elDemand, c.threshold)

	if err := c.loadTanks(in.Tanks); err != nil {
		return nil, err
	}
	s.tanks = c.tanks

	for _, d := range c.gens {
		d.feedback(in.Generators[d.gen.Kind.String()], c.tanks)
	}

	out := &StepOutput{
		Time:       in.Time,
		Elapsed:    now,
		Context:    s.ctx,
		Generators: make(map[plant.GeneratorKind]GeneratorOutput, len(c.gens)),
	}
	out.SH, out.DHW = c.circuits.serve(s)
	out.IdealHeaterPower = out.SH.RodPower + out.DHW.RodPower

	for _, d := range c.gens {
		started, err := d.step(s, now)
		if err != nil {
			return nil, err
		}
		o := d.output(now)
		o.Started = started
		out.Generators[d.gen.Kind] = o
	}
	out.TankHeaters = c.tankHeaters()

	if err := c.balancer.Balance(c.tanks, c.cfg.Links); err != nil {
		return nil, errors.WithMessagef(err, "step at %v", in.Time)
	}

	out.Tanks = make([][plant.NumPorts]plant.Port, len(c.tanks))
	for i, t := range c.tanks {
		out.Tanks[i] = t.Ports
	}

	c.log.Debugf("Step %v (%s): heat %.0f W, ideal heater %.0f W", now, s.ctx, s.heat, out.IdealHeaterPower)
	return out, nil
}

// signals normalises the demands of a step input to W. Missing and negative
// demands count as zero. A missing total is the sum of the parts, a missing
// part is what the total leaves over from the other one.
func (c *Controller) signals(in StepInput) *signals {
	s := &signals{
		ambient:  in.Ambient,
		heat:     watts(in.HeatDemand),
		sh:       watts(in.SHDemand),
		dhw:      watts(in.DHWDemand),
		pv:       in.PV,
		chpElec:  in.CHPElec,
		elDemand: in.ElDemand * kW,
	}
	switch {
	case s.heat == 0:
		s.heat = s.sh + s.dhw
	case in.SHDemand == nil && in.DHWDemand == nil:
		s.sh = s.heat
	case in.SHDemand == nil:
		s.sh = math.Max(s.heat-s.dhw, 0)
	case in.DHWDemand == nil:
		s.dhw = math.Max(s.heat-s.sh, 0)
	}
	return s
}

func watts(kw *float64) float64 {
	if kw == nil || *kw < 0 {
		return 0
	}
	return *kw * kW
}

// loadTanks takes over the measured state and resets all flows. Outlets
// without a measured temperature take the layer they draw from.
func (c *Controller) loadTanks(in []TankInput) error {
	if len(in) != len(c.tanks) {
		return errors.Errorf("step input has %d tanks, plant has %d", len(in), len(c.tanks))
	}

	for i, t := range c.tanks {
		ti := in[i]
		if len(ti.Layers) == 0 {
			return errors.Errorf("tank%d: no layer temperatures", i)
		}
		t.Layers = append(t.Layers[:0], ti.Layers...)
		t.MeanTemp = floats.Sum(t.Layers) / float64(len(t.Layers))
		if ti.Mean != nil {
			t.MeanTemp = *ti.Mean
		}
		t.Mass = c.cfg.Tanks[i].Mass
		if ti.Mass != nil {
			t.Mass = *ti.Mass
		}

		t.ResetFlows()
		for _, p := range []plant.PortID{plant.HeatOut, plant.HeatOut2} {
			t.Port(p).Temp = t.Top()
		}
		for _, p := range []plant.PortID{plant.HPOut, plant.CHPOut, plant.BoilerOut} {
			t.Port(p).Temp = t.Bottom()
		}
		for name, temp := range ti.Ports {
			id, err := plant.ParsePort(name)
			if err != nil {
				return errors.Wrapf(err, "tank%d", i)
			}
			t.Port(id).Temp = temp
		}
	}
	return nil
}

// tankHeaters sizes the built-in electric heater of every tank that has one.
func (c *Controller) tankHeaters() []float64 {
	out := make([]float64, len(c.tanks))
	for i, t := range c.tanks {
		if sp := c.heaters[i]; sp != nil && t.MeanTemp < *sp {
			out[i] = chargeDemand(t.Mass, *sp, t.MeanTemp, c.cfg.Step)
		}
	}
	return out
}

// inletTemp is the temperature of the water a generator draws, read after
// the last step.
func (c *Controller) inletTemp(kind plant.GeneratorKind) float64 {
	for _, d := range c.gens {
		if d.gen.Kind == kind {
			return c.tanks[d.conn.out.Tank].Port(d.conn.out.Port).Temp
		}
	}
	return c.tanks[0].Bottom()
}
