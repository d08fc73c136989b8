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
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/db"
	"github.com/antst/thermoplant/internal/logger"
	"github.com/antst/thermoplant/internal/metrics"
	"github.com/antst/thermoplant/internal/plant"
)

func loadSampleConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("../config.yaml")
	require.NoError(t, err)
	return cfg
}

// syntheticInputs is a daily cycle of tank temperatures, demands and PV.
func syntheticInputs(days int) []StepInput {
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	var out []StepInput
	for i := 0; i < days*96; i++ {
		x := float64(i) * 2 * math.Pi / 96
		base := 45 + 10*math.Sin(x)
		tank := func(offset float64) TankInput {
			b := base + offset
			return TankInput{Layers: []float64{b - 6, b, b + 6}}
		}
		out = append(out, StepInput{
			Time:      start.Add(time.Duration(i) * 15 * time.Minute),
			Ambient:   2 + 5*math.Sin(x-1),
			Tanks:     []TankInput{tank(-8), tank(0), tank(12)},
			SHDemand:  kw(6 + 3*math.Cos(x)),
			DHWDemand: kw(math.Max(0, 4*math.Sin(3*x))),
			PV:        math.Max(0, 4000*math.Sin(x-math.Pi/2)),
			ElDemand:  1.5,
			Generators: map[string]GeneratorInput{
				"hp": {Supply: 6000, MassFlow: 0.3, OutletTemp: kw(base + 5)},
			},
		})
	}
	return out
}

func TestMassConservation(t *testing.T) {
	for _, balancer := range []string{"chain", "least_squares"} {
		t.Run(balancer, func(t *testing.T) {
			cfg := loadSampleConfig(t)
			cfg.Balancer = balancer
			cfg.IdealHeater = true
			sim, err := NewSimulation(cfg, logger.Nop())
			require.NoError(t, err)

			for i, in := range syntheticInputs(3) {
				out, err := sim.Step(in)
				require.NoError(t, err, "step %d", i)

				for n, ports := range out.Tanks {
					var net float64
					for _, p := range ports {
						net += p.Flow
					}
					require.InDelta(t, 0, net, plant.BalanceTolerance, "tank%d at step %d", n, i)
				}
				for kind, g := range out.Generators {
					if g.Status == plant.Off {
						require.Zero(t, g.Demand, "%s at step %d", kind, i)
					}
				}
			}
		})
	}
}

func TestFeedbackLagsOneStep(t *testing.T) {
	sim, err := NewSimulation(loadSampleConfig(t), logger.Nop())
	require.NoError(t, err)

	var prev *StepOutput
	ran := false
	for i, in := range syntheticInputs(1) {
		out, err := sim.Step(in)
		require.NoError(t, err)

		chp := out.Generators[plant.CHP]
		if prev == nil {
			assert.Zero(t, chp.Supply)
		} else {
			produced := prev.Produced[plant.CHP]
			assert.Equal(t, produced.Power, chp.Supply, "step %d", i)
			assert.Equal(t, produced.MassFlow, chp.MassFlow, "step %d", i)
			assert.Equal(t, produced.OutletTemp, chp.OutletTemp, "step %d", i)
			ran = ran || produced.Power > 0
		}
		prev = out
	}
	assert.True(t, ran, "the CHP never produced anything")
	assert.Equal(t, prev.Generators[plant.CHP].Status, sim.Controller().Generator(plant.CHP).Status)
}

func TestRunRecordsAndCounts(t *testing.T) {
	cfg := loadSampleConfig(t)
	store, err := db.OpenDatabase(":memory:")
	require.NoError(t, err)
	defer store.Close()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	sim, err := NewSimulation(cfg, logger.Nop(),
		WithRecorder(NewStoreRecorder(store, cfg)),
		WithMetrics(m),
		WithPublisher(NewPublisher(&fakeMqtt{}, "plant", logger.Nop())),
	)
	require.NoError(t, err)

	inputs := syntheticInputs(1)[:8]
	sum, err := sim.Run(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Steps)
	assert.Equal(t, sim.ID, sum.RunID)

	ctx := context.Background()
	run, err := store.GetRun(ctx, sim.ID)
	require.NoError(t, err)
	assert.True(t, run.StartedAt.Equal(inputs[0].Time))
	assert.Contains(t, run.Config, "tank0.heat_out -> tank1.hp_out")

	rows, err := store.Steps(ctx, sim.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 8*3)

	flows, err := store.TankFlows(ctx, sim.ID, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, flows)

	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP thermoplant_steps_total Simulation steps completed
# TYPE thermoplant_steps_total counter
thermoplant_steps_total 8
`), "thermoplant_steps_total"))
}

func TestRunRepeatedStepIsIdempotent(t *testing.T) {
	cfg := loadSampleConfig(t)
	once := syntheticInputs(1)[:51]
	twice := append(append([]StepInput{}, once...), once[50])

	sim, err := NewSimulation(cfg, logger.Nop())
	require.NoError(t, err)
	want, err := sim.Run(context.Background(), once)
	require.NoError(t, err)
	require.Positive(t, want.Produced[plant.CHP], "the CHP never produced anything")

	store, err := db.OpenDatabase(":memory:")
	require.NoError(t, err)
	defer store.Close()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	sim, err = NewSimulation(cfg, logger.Nop(), WithRecorder(NewStoreRecorder(store, cfg)), WithMetrics(m))
	require.NoError(t, err)
	got, err := sim.Run(context.Background(), twice)
	require.NoError(t, err)

	assert.Equal(t, want.Steps, got.Steps)
	assert.Equal(t, want.Starts, got.Starts)
	assert.Equal(t, want.Produced, got.Produced)
	assert.Equal(t, want.Fuel, got.Fuel)
	assert.Equal(t, want.IdealHeaterEnergy, got.IdealHeaterEnergy)

	rows, err := store.Steps(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 51*3)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP thermoplant_steps_total Simulation steps completed
# TYPE thermoplant_steps_total counter
thermoplant_steps_total 51
`), "thermoplant_steps_total"))

	// the repeat sees the feedback of the step before, not its own output
	again, err := sim.Step(once[50])
	require.NoError(t, err)
	first, err := NewSimulation(cfg, logger.Nop())
	require.NoError(t, err)
	var last *StepOutput
	for _, in := range once {
		last, err = first.Step(in)
		require.NoError(t, err)
	}
	for kind, g := range last.Generators {
		assert.Equal(t, g.Status, again.Generators[kind].Status, "%s", kind)
		assert.Equal(t, g.Demand, again.Generators[kind].Demand, "%s", kind)
		assert.Equal(t, g.Supply, again.Generators[kind].Supply, "%s", kind)
	}
	assert.Equal(t, last.Produced, again.Produced)
}

func TestRunStopsOnCancel(t *testing.T) {
	sim, err := NewSimulation(loadSampleConfig(t), logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := sim.Run(ctx, syntheticInputs(1))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Zero(t, sum.Steps)
}

func TestRunWithoutInputs(t *testing.T) {
	sim, err := NewSimulation(loadSampleConfig(t), logger.Nop())
	require.NoError(t, err)

	sum, err := sim.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, sum.Steps)
}
