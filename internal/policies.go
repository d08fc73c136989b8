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

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/plant"
)

// policy turns the signals of a step into a switching wish and a heat demand
// for one generator. decide sees the generator as it was before the step,
// size only runs for a generator that is on after it.
type policy interface {
	decide(s *signals, g *plant.Generator, now time.Duration) (wantOn, wantOff bool)
	size(s *signals, g *plant.Generator) float64
}

// chargeDemand is the power lifting mass kg of water from t to target within
// one step. It is never negative.
func chargeDemand(mass, target, t float64, step time.Duration) float64 {
	d := mass * plant.WaterCp * (target - t) / step.Seconds()
	if d <= 0 || math.IsNaN(d) {
		return 0
	}
	return d
}

type band struct {
	ref       config.SensorRef
	low, high float64
}

func newBand(c *config.SetpointConfig) band {
	return band{ref: c.SensorRef, low: *c.Low, high: *c.High}
}

type thresholdPolicy struct {
	band
	step time.Duration
}

func (p *thresholdPolicy) decide(s *signals, _ *plant.Generator, _ time.Duration) (bool, bool) {
	t := s.layer(p.ref)
	return t <= p.low, t >= p.high
}

func (p *thresholdPolicy) size(s *signals, _ *plant.Generator) float64 {
	return chargeDemand(s.tanks[p.ref.Tank].Mass, p.high, s.layer(p.ref), p.step)
}

// seasonalPolicy is the heat pump's threshold policy with a band per season
// and time of day. With an electrical surplus a running heat pump keeps
// charging up to the surplus setpoint.
type seasonalPolicy struct {
	// winter day, winter night, summer day, summer night
	bands     [4]band
	surplusSP *float64
	step      time.Duration
}

func (p *seasonalPolicy) band(ctx Context) band {
	i := 0
	if !ctx.Winter {
		i += 2
	}
	if !ctx.Day {
		i++
	}
	return p.bands[i]
}

func (p *seasonalPolicy) high(b band, ctx Context, status plant.Status) float64 {
	if ctx.Surplus && status == plant.On && p.surplusSP != nil {
		return math.Max(b.high, *p.surplusSP)
	}
	return b.high
}

func (p *seasonalPolicy) decide(s *signals, g *plant.Generator, _ time.Duration) (bool, bool) {
	b := p.band(s.ctx)
	t := s.layer(b.ref)
	return t <= b.low, t >= p.high(b, s.ctx, g.Status)
}

func (p *seasonalPolicy) size(s *signals, g *plant.Generator) float64 {
	b := p.band(s.ctx)
	return chargeDemand(s.tanks[b.ref.Tank].Mass, p.high(b, s.ctx, g.Status), s.layer(b.ref), p.step)
}

// chpPolicy keeps the hot water tank charged. It also tracks how long a
// running CHP has failed to hold the top of the tank at the setpoint.
type chpPolicy struct {
	tank     int
	setpoint float64
	buffer   float64
	step     time.Duration

	deficitSince *time.Duration
	deficit      time.Duration
}

func (p *chpPolicy) decide(s *signals, g *plant.Generator, now time.Duration) (bool, bool) {
	t := s.tanks[p.tank]
	top, bottom := t.Top(), t.Bottom()

	// the deficit counts the current step: the CHP's output only reaches the
	// tank at the end of it
	if top < p.setpoint && g.Uptime(now) > 0 {
		if p.deficitSince == nil {
			p.deficitSince = &now
		}
		p.deficit = now - *p.deficitSince + p.step
	} else {
		p.deficitSince = nil
		p.deficit = 0
	}

	return top < p.setpoint+p.buffer, bottom >= p.setpoint
}

func (p *chpPolicy) size(s *signals, _ *plant.Generator) float64 {
	t := s.tanks[p.tank]
	return chargeDemand(t.Mass, p.setpoint, t.Bottom(), p.step)
}

// Deficit is the time the CHP has been running with the tank top below the
// setpoint, current step included.
func (p *chpPolicy) Deficit() time.Duration {
	return p.deficit
}

// backupPolicy engages once the CHP deficit outlasts delay and the guard
// tank has not reached the setpoint at its top.
type backupPolicy struct {
	chp      *chpPolicy
	delay    time.Duration
	sizing   string
	tank     int
	guard    int
	setpoint float64
	step     time.Duration
}

func (p *backupPolicy) decide(s *signals, _ *plant.Generator, _ time.Duration) (bool, bool) {
	wantOn := p.chp.Deficit() > p.delay && s.tanks[p.guard].Top() < p.setpoint
	return wantOn, s.tanks[p.tank].Bottom() >= p.setpoint
}

func (p *backupPolicy) size(s *signals, _ *plant.Generator) float64 {
	if p.sizing == config.SizingHeatDemand {
		return s.heat
	}
	// the tank deficit spread over two steps
	t := s.tanks[p.tank]
	return chargeDemand(t.Mass, p.setpoint, t.Bottom(), 2*p.step)
}

func newPolicy(g *config.GeneratorConfig, cfg *config.Config, chp *chpPolicy) (policy, error) {
	switch g.Policy {
	case config.PolicyThreshold:
		return &thresholdPolicy{band: newBand(g.Setpoint), step: cfg.Step}, nil
	case config.PolicySeasonal:
		p := &seasonalPolicy{surplusSP: g.Seasonal.SurplusSetpoint, step: cfg.Step}
		for i, sc := range g.Seasonal.Sets() {
			p.bands[i] = newBand(sc)
		}
		return p, nil
	case config.PolicyCHP:
		return &chpPolicy{tank: g.CHP.Tank, setpoint: g.CHP.Setpoint, buffer: *g.CHP.Buffer, step: cfg.Step}, nil
	case config.PolicyBackup:
		if chp == nil {
			return nil, plant.NewConfigurationError("policy", "%s policy needs a CHP under the %s policy", g.Policy, config.PolicyCHP)
		}
		p := &backupPolicy{
			chp:      chp,
			delay:    *g.Backup.EngageDelay,
			sizing:   g.Backup.Sizing,
			tank:     chp.tank,
			guard:    *cfg.Circuits.DHW.Tank,
			setpoint: chp.setpoint,
			step:     cfg.Step,
		}
		if g.Backup.Tank != nil {
			p.tank = *g.Backup.Tank
		}
		if g.Backup.GuardTank != nil {
			p.guard = *g.Backup.GuardTank
		}
		if g.Backup.Setpoint != nil {
			p.setpoint = *g.Backup.Setpoint
		}
		return p, nil
	}
	return nil, plant.NewConfigurationError("policy", "unknown policy `%s`", g.Policy)
}

// decisionTank is the tank a policy watches; generators without a configured
// connection are plumbed into it.
func decisionTank(p policy) int {
	switch p := p.(type) {
	case *thresholdPolicy:
		return p.ref.Tank
	case *seasonalPolicy:
		return p.bands[0].ref.Tank
	case *chpPolicy:
		return p.tank
	case *backupPolicy:
		return p.tank
	}
	return 0
}
