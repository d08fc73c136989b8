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
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/hydraulics"
	"github.com/antst/thermoplant/internal/plant"
)

var generatorPorts = [plant.NumGenerators]struct{ out, in plant.PortID }{
	plant.HeatPump: {plant.HPOut, plant.HPIn},
	plant.CHP:      {plant.CHPOut, plant.CHPIn},
	plant.Boiler:   {plant.BoilerOut, plant.BoilerIn},
}

// connection is the hydraulic path of a generator: it draws from out and
// returns through a splitter into one or two in ports.
type connection struct {
	out      plant.PortRef
	in       []plant.PortRef
	splitter hydraulics.Splitter
}

func newConnection(kind plant.GeneratorKind, c *config.ConnectionConfig, tank int) connection {
	if c == nil {
		ports := generatorPorts[kind]
		return connection{
			out:      plant.PortRef{Tank: tank, Port: ports.out},
			in:       []plant.PortRef{{Tank: tank, Port: ports.in}},
			splitter: hydraulics.NewSplitter(1),
		}
	}
	return connection{out: c.Out, in: c.In, splitter: hydraulics.NewSplitter(*c.Split)}
}

// apply moves flow kg/s at temp out of the out port and into the in ports.
func (c connection) apply(tanks []*plant.Tank, flow, temp float64) {
	if flow <= 0 {
		return
	}
	tanks[c.out.Tank].Draw(c.out.Port, flow)
	if len(c.in) == 1 {
		tanks[c.in[0].Tank].Feed(c.in[0].Port, flow, temp)
		return
	}
	f1, f2 := c.splitter.Split(flow)
	tanks[c.in[0].Tank].Feed(c.in[0].Port, f1, temp)
	tanks[c.in[1].Tank].Feed(c.in[1].Port, f2, temp)
}

// dispatcher runs the shared on/off state machine of one generator around
// its policy.
type dispatcher struct {
	gen        *plant.Generator
	policy     policy
	minRuntime time.Duration
	onConds    []Condition
	offConds   []Condition
	conn       connection
	log        *zap.SugaredLogger
}

func newDispatcher(kind plant.GeneratorKind, g *config.GeneratorConfig, cfg *config.Config, chp *chpPolicy, log *zap.SugaredLogger) (*dispatcher, error) {
	field := "generators." + kind.String()

	p, err := newPolicy(g, cfg, chp)
	if err != nil {
		return nil, withField(field, err)
	}
	on, err := parseConditions(field+".on_conditions", g.OnConditions, cfg.Tanks)
	if err != nil {
		return nil, err
	}
	off, err := parseConditions(field+".off_conditions", g.OffConditions, cfg.Tanks)
	if err != nil {
		return nil, err
	}

	return &dispatcher{
		gen:        plant.NewGenerator(kind),
		policy:     p,
		minRuntime: *g.MinRuntime,
		onConds:    on,
		offConds:   off,
		conn:       newConnection(kind, g.Connection, decisionTank(p)),
		log:        log.Named(kind.String()),
	}, nil
}

// feedback applies what the generator reported for the previous step and
// puts its flow through the connection.
func (d *dispatcher) feedback(in GeneratorInput, tanks []*plant.Tank) {
	g := d.gen
	g.Supply = in.Supply
	g.MassFlow = in.MassFlow

	outTemp := tanks[d.conn.out.Tank].Port(d.conn.out.Port).Temp
	g.OutletTemp = outTemp
	if in.OutletTemp != nil && !math.IsNaN(*in.OutletTemp) {
		g.OutletTemp = *in.OutletTemp
	} else if in.MassFlow > 0 {
		d.log.Warnf("Outlet temperature unknown, using %s at %.1f", d.conn.out, outTemp)
	}

	frac := 1.0
	if in.OnFraction != nil {
		frac = *in.OnFraction
	}
	d.conn.apply(tanks, g.MassFlow*frac, g.OutletTemp)
}

// step decides status and demand at simulation time now. It reports whether
// the generator was switched on.
func (d *dispatcher) step(s *signals, now time.Duration) (bool, error) {
	g := d.gen

	wantOn, wantOff := d.policy.decide(s, g, now)
	wantOn = wantOn || anyHolds(d.onConds, s)
	wantOff = wantOff || anyHolds(d.offConds, s)

	started, locked := false, false
	switch g.Status {
	case plant.Off:
		if wantOn && !wantOff {
			started = g.TurnOn(now)
			d.log.Infof("Switched on at %v (%s)", now, s.ctx)
		}
	case plant.On:
		if wantOff {
			if up := g.Uptime(now); up >= d.minRuntime {
				g.TurnOff()
				d.log.Infof("Switched off at %v after %v", now, up)
			} else {
				locked = true
				d.log.Debugf("Off requested, locked for another %v", d.minRuntime-up)
			}
		}
	default:
		return false, fmt.Errorf("%s: invalid status %v", g.Kind, g.Status)
	}

	if g.Status == plant.On && !locked {
		g.Demand = math.Max(0, d.policy.size(s, g))
	}
	d.log.Debugf("on=%v off=%v -> %v, demand %.0f W", wantOn, wantOff, g.Status, g.Demand)
	return started, nil
}

func (d *dispatcher) output(now time.Duration) GeneratorOutput {
	return GeneratorOutput{
		Status:     d.gen.Status,
		Demand:     d.gen.Demand,
		Uptime:     d.gen.Uptime(now),
		Supply:     d.gen.Supply,
		MassFlow:   d.gen.MassFlow,
		OutletTemp: d.gen.OutletTemp,
	}
}
