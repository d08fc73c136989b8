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

package inputs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	steps, err := Read(strings.NewReader(`
steps:
  - time: 2024-01-15T06:00:00Z
    ambient: -2.5
    tanks:
      - layers: [35, 42, 50]
        ports: {heat_in: 30}
    heat_demand: 8
    generators:
      hp: {supply: 4000, mass_flow: 0.2, outlet_temp: 45}
  - ambient: -2
    tanks:
      - layers: [36, 43, 51]
        mean: 43
    pv: 1200
    el_demand: 0.8
`), 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	first := steps[0]
	assert.Equal(t, time.Date(2024, time.January, 15, 6, 0, 0, 0, time.UTC), first.Time.UTC())
	assert.Equal(t, -2.5, first.Ambient)
	assert.Equal(t, 30.0, first.Tanks[0].Ports["heat_in"])
	require.NotNil(t, first.HeatDemand)
	assert.Equal(t, 8.0, *first.HeatDemand)
	assert.Nil(t, first.SHDemand)
	assert.Equal(t, 45.0, *first.Generators["hp"].OutletTemp)
	assert.Nil(t, first.Generators["hp"].OnFraction)

	second := steps[1]
	assert.Equal(t, first.Time.Add(15*time.Minute), second.Time)
	assert.Equal(t, 43.0, *second.Tanks[0].Mean)
	assert.Equal(t, 1200.0, second.PV)
	assert.Equal(t, 0.8, second.ElDemand)
}

func TestReadNeedsStartTime(t *testing.T) {
	_, err := Read(strings.NewReader(`
steps:
  - ambient: 1
`), time.Minute)
	assert.Error(t, err)
}

func TestReadEmpty(t *testing.T) {
	steps, err := Read(strings.NewReader(""), time.Minute)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml", time.Minute)
	assert.Error(t, err)
}

func TestLoadSampleInputs(t *testing.T) {
	steps, err := Load("../../inputs.yaml", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	for i := 1; i < len(steps); i++ {
		assert.True(t, steps[i].Time.After(steps[i-1].Time))
	}
}
