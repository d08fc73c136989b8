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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/plant"
)

func TestParseSignal(t *testing.T) {
	tanks := []*config.TankConfig{{Mass: 100, Layers: 3}, {Mass: 100, Layers: 2}}

	for _, name := range []string{"ambient", "heat_demand", "sh_demand", "dhw_demand", "pv", "chp_el", "el_demand", "surplus", "tank1.sensor_1", "tank0.mean"} {
		sig, err := ParseSignal(name, tanks)
		require.NoError(t, err, name)
		assert.Equal(t, name, sig.String())
	}

	for _, name := range []string{"", "wind", "tank2.mean", "tank1.sensor_2", "tank0.sensor_x", "tankA.mean", "tank0.top"} {
		_, err := ParseSignal(name, tanks)
		assert.Error(t, err, name)
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		op   string
		a, b float64
		want bool
	}{
		{"<", 1, 2, true},
		{"<", 2, 2, false},
		{">", 3, 2, true},
		{"<=", 2, 2, true},
		{"≤", 2, 2, true},
		{">=", 1, 2, false},
		{"≥", 2, 2, true},
		{" > ", 1, 0, true},
		{"<", math.NaN(), 2, false},
	}
	for _, tt := range tests {
		op, err := ParseOperator(tt.op)
		require.NoError(t, err, tt.op)
		assert.Equal(t, tt.want, op.Apply(tt.a, tt.b), "%v %s %v", tt.a, tt.op, tt.b)
	}

	_, err := ParseOperator("!=")
	assert.Error(t, err)
}

func TestConditionHolds(t *testing.T) {
	tanks := []*config.TankConfig{{Mass: 100, Layers: 3}}
	conds, err := parseConditions("on", []*config.ConditionConfig{
		{Signal: "tank0.sensor_2", Op: ">=", Value: 60},
		{Signal: "surplus", Op: ">", Value: 0.5},
	}, tanks)
	require.NoError(t, err)
	assert.Equal(t, "tank0.sensor_2 >= 60", conds[0].String())

	tank := plant.NewTank(0, 3, 100)
	copy(tank.Layers, []float64{40, 50, 55})
	s := &signals{tanks: []*plant.Tank{tank}}
	assert.False(t, anyHolds(conds, s))

	s.ctx.Surplus = true
	assert.True(t, anyHolds(conds, s))
	assert.Equal(t, 1.0, s.value(conds[1].Signal))
}

func TestSeasonClock(t *testing.T) {
	clock := newSeasonClock(config.NewSeasonConfig())

	ctx := clock.at(time.Date(2024, time.November, 3, 5, 59, 0, 0, time.UTC))
	assert.Equal(t, Context{Winter: true}, ctx)
	assert.Equal(t, "winter/night", ctx.String())

	ctx = clock.at(time.Date(2024, time.June, 3, 6, 0, 0, 0, time.UTC))
	assert.Equal(t, Context{Day: true}, ctx)

	ctx = clock.at(time.Date(2024, time.June, 3, 22, 0, 0, 0, time.UTC))
	assert.False(t, ctx.Day)
}

func TestSurplus(t *testing.T) {
	assert.True(t, surplus(3000, 2000, 4000, 10))
	assert.False(t, surplus(3000, 0, 2990, 10))
	assert.False(t, surplus(0, 0, 0, 10))
}
