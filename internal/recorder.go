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
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/db"
	"github.com/antst/thermoplant/internal/plant"
)

// Recorder persists the outcome of every step of a run.
type Recorder interface {
	Begin(ctx context.Context, runID string, startedAt time.Time) error
	Record(ctx context.Context, runID string, step int, out *StepOutput) error
}

// StoreRecorder writes runs and their steps into the SQLite store.
type StoreRecorder struct {
	store *db.Store
	cfg   *config.Config
}

func NewStoreRecorder(store *db.Store, cfg *config.Config) *StoreRecorder {
	return &StoreRecorder{store: store, cfg: cfg}
}

// Begin registers a run together with the configuration it runs with.
func (r *StoreRecorder) Begin(ctx context.Context, runID string, startedAt time.Time) error {
	var doc string
	if r.cfg != nil {
		d, err := yaml.Marshal(r.cfg)
		if err != nil {
			return errors.Wrap(err, "marshal config")
		}
		doc = string(d)
	}
	return r.store.CreateRun(ctx, db.Run{ID: runID, StartedAt: startedAt, Config: doc})
}

func (r *StoreRecorder) Record(ctx context.Context, runID string, step int, out *StepOutput) error {
	steps, flows := stepRows(runID, step, out)
	return r.store.InsertStep(ctx, steps, flows)
}

// stepRows flattens a step output. Only ports carrying flow are kept.
func stepRows(runID string, step int, out *StepOutput) ([]db.StepRow, []db.TankFlowRow) {
	var steps []db.StepRow
	for _, kind := range plant.Kinds() {
		g, ok := out.Generators[kind]
		if !ok {
			continue
		}
		supply := g.Supply
		if p, ok := out.Produced[kind]; ok {
			supply = p.Power
		}
		steps = append(steps, db.StepRow{
			RunID:     runID,
			Step:      step,
			TS:        out.Time,
			Generator: kind.String(),
			Status:    g.Status.String(),
			Demand:    g.Demand,
			Supply:    supply,
		})
	}

	var flows []db.TankFlowRow
	for i, ports := range out.Tanks {
		for id, p := range ports {
			if p.Flow == 0 {
				continue
			}
			flows = append(flows, db.TankFlowRow{
				RunID: runID,
				Step:  step,
				Tank:  i,
				Port:  plant.PortID(id).String(),
				Flow:  p.Flow,
				Temp:  p.Temp,
			})
		}
	}
	return steps, flows
}
