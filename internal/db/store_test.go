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

package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateRun(ctx, Run{ID: "run-1", StartedAt: start, Config: "step: 15m"}))

	for step := 0; step < 2; step++ {
		ts := start.Add(time.Duration(step) * 15 * time.Minute)
		require.NoError(t, s.InsertStep(ctx,
			[]StepRow{
				{RunID: "run-1", Step: step, TS: ts, Generator: "hp", Status: "on", Demand: 4000, Supply: 3800},
				{RunID: "run-1", Step: step, TS: ts, Generator: "chp", Status: "off"},
			},
			[]TankFlowRow{
				{RunID: "run-1", Step: step, Tank: 0, Port: "heat_in", Flow: 0.2, Temp: 33},
				{RunID: "run-1", Step: step, Tank: 0, Port: "heat_out", Flow: -0.2, Temp: 41},
			},
		))
	}

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "step: 15m", run.Config)
	assert.True(t, start.Equal(run.StartedAt))

	steps, err := s.Steps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, "chp", steps[0].Generator)
	assert.Equal(t, "hp", steps[1].Generator)
	assert.Equal(t, 4000.0, steps[1].Demand)
	assert.Equal(t, 1, steps[3].Step)

	flows, err := s.TankFlows(ctx, "run-1", 1)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.InDelta(t, 0.0, flows[0].Flow+flows[1].Flow, 1e-12)
}

func TestInsertStepIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateRun(ctx, Run{ID: "r", StartedAt: time.Now()}))

	row := StepRow{RunID: "r", Step: 0, TS: time.Now(), Generator: "hp", Status: "off"}
	require.NoError(t, s.InsertStep(ctx, []StepRow{row}, nil))

	// the duplicate generator row violates the primary key, so the flow row is rolled back too
	err := s.InsertStep(ctx, []StepRow{row}, []TankFlowRow{{RunID: "r", Step: 0, Port: "heat_in"}})
	assert.Error(t, err)

	flows, err := s.TankFlows(ctx, "r", 0)
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestGetMissingRun(t *testing.T) {
	_, err := openTestStore(t).GetRun(context.Background(), "nope")
	assert.Error(t, err)
}
