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
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/metrics"
	"github.com/antst/thermoplant/internal/plant"
	"github.com/antst/thermoplant/internal/transformer"
)

// Summary totals a finished or interrupted run.
type Summary struct {
	RunID string
	Steps int
	// Starts counts off->on transitions per generator.
	Starts map[plant.GeneratorKind]int
	// Produced is the simulated thermal energy per generator, J.
	Produced          map[plant.GeneratorKind]float64
	Fuel              float64
	IdealHeaterEnergy float64
}

type Option func(*Simulation)

func WithRecorder(r Recorder) Option {
	return func(s *Simulation) {
		s.recorder = r
	}
}

func WithPublisher(p *Publisher) Option {
	return func(s *Simulation) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Simulation) {
		s.metrics = m
	}
}

// Simulation closes the loop around a Controller: generators with a model
// get their output computed here and fed back one step later.
type Simulation struct {
	ID string

	ctrl   *Controller
	step   time.Duration
	models map[plant.GeneratorKind]*transformer.Model
	lagged map[plant.GeneratorKind]transformer.Output
	steps  int

	// time of the last step and the feedback it was fed with
	last  *time.Time
	prior map[plant.GeneratorKind]transformer.Output

	recorder  Recorder
	publisher *Publisher
	metrics   *metrics.Collector
	log       *zap.SugaredLogger
}

func NewSimulation(cfg *config.Config, log *zap.SugaredLogger, opts ...Option) (*Simulation, error) {
	ctrl, err := NewController(cfg, log.Named("controller"))
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		ID:     uuid.New().String(),
		ctrl:   ctrl,
		step:   cfg.Step,
		models: make(map[plant.GeneratorKind]*transformer.Model),
		lagged: make(map[plant.GeneratorKind]transformer.Output),
		log:    log,
	}
	for _, kind := range plant.Kinds() {
		gc := cfg.Generator(kind)
		if gc == nil || gc.Model == nil {
			continue
		}
		m, err := transformer.New(gc.Model.Params(cfg.Step))
		if err != nil {
			return nil, withField("generators."+kind.String()+".model", err)
		}
		s.models[kind] = m
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Simulation) Controller() *Controller {
	return s.ctrl
}

// Step runs one step without a context.
func (s *Simulation) Step(in StepInput) (*StepOutput, error) {
	out, _, err := s.runStep(context.Background(), in)
	return out, err
}

// runStep advances the plant by one step. A step at the time of the previous
// one is computed again from the same feedback; it is not recorded or
// counted a second time and repeated reports it.
func (s *Simulation) runStep(ctx context.Context, in StepInput) (out *StepOutput, repeated bool, err error) {
	repeated = s.last != nil && in.Time.Equal(*s.last)
	if !repeated {
		s.prior = maps.Clone(s.lagged)
		t := in.Time
		s.last = &t
	}

	gens := make(map[string]GeneratorInput, len(in.Generators)+len(s.prior))
	for k, v := range in.Generators {
		gens[k] = v
	}
	for kind, o := range s.prior {
		outlet := o.OutletTemp
		gens[kind.String()] = GeneratorInput{Supply: o.Power, MassFlow: o.MassFlow, OutletTemp: &outlet}
		if kind == plant.CHP {
			in.CHPElec = o.Elec
		}
	}
	in.Generators = gens

	out, err = s.ctrl.Step(in)
	if err != nil {
		return nil, repeated, err
	}

	out.Produced = make(map[plant.GeneratorKind]transformer.Output, len(s.models))
	for kind, m := range s.models {
		g := out.Generators[kind]
		o := m.Step(out.Elapsed, transformer.Input{
			Status:    g.Status,
			Demand:    g.Demand,
			InletTemp: s.ctrl.inletTemp(kind),
		})
		out.Produced[kind] = o
		s.lagged[kind] = o
	}

	if s.recorder != nil && !repeated {
		if err := s.recorder.Record(ctx, s.ID, s.steps, out); err != nil {
			return nil, repeated, err
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(out); err != nil {
			s.log.Warn(err)
		}
	}
	if repeated {
		return out, true, nil
	}
	if s.metrics != nil {
		s.observe(out)
	}
	s.steps++
	return out, false, nil
}

func (s *Simulation) observe(out *StepOutput) {
	s.metrics.ObserveStep()
	for kind, g := range out.Generators {
		s.metrics.ObserveDemand(kind.String(), g.Demand)
		if g.Started {
			s.metrics.ObserveStart(kind.String())
		}
	}
	s.metrics.AddIdealHeaterEnergy(out.IdealHeaterPower * s.step.Seconds())
}

// Run feeds inputs through the plant in order. Cancellation is checked
// between steps; the summary covers the steps completed so far.
func (s *Simulation) Run(ctx context.Context, inputs []StepInput) (*Summary, error) {
	sum := &Summary{
		RunID:    s.ID,
		Starts:   make(map[plant.GeneratorKind]int),
		Produced: make(map[plant.GeneratorKind]float64),
	}
	if len(inputs) == 0 {
		return sum, nil
	}

	if s.recorder != nil {
		if err := s.recorder.Begin(ctx, s.ID, inputs[0].Time); err != nil {
			return sum, err
		}
	}
	s.log.Infof("Run %s: %d steps of %v from %v", s.ID, len(inputs), s.step, inputs[0].Time)

	for i, in := range inputs {
		select {
		case <-ctx.Done():
			return sum, errors.Wrapf(ctx.Err(), "run %s stopped at step %d", s.ID, i)
		default:
		}

		out, repeated, err := s.runStep(ctx, in)
		if err != nil {
			return sum, errors.WithMessagef(err, "run %s, step %d", s.ID, i)
		}
		if repeated {
			s.log.Debugf("Step %d repeats %v, not counted", i, in.Time)
			continue
		}

		sum.Steps++
		for kind, g := range out.Generators {
			if g.Started {
				sum.Starts[kind]++
			}
		}
		for kind, o := range out.Produced {
			sum.Produced[kind] += o.Power * s.step.Seconds()
			sum.Fuel += o.Fuel
		}
		sum.IdealHeaterEnergy += out.IdealHeaterPower * s.step.Seconds()
	}

	s.log.Infof("Run %s finished after %d steps, starts %v", s.ID, sum.Steps, sum.Starts)
	return sum, nil
}
