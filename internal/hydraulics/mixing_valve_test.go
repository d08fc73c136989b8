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

package hydraulics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeFlow(t *testing.T) {
	assert.InDelta(t, 0.5974, SizeFlow(50000, 20), 1e-3)
	assert.Equal(t, 0.0, SizeFlow(50000, 0))
	assert.Equal(t, 0.0, SizeFlow(50000, -3))
	assert.Equal(t, 0.0, SizeFlow(-1, 20))
	assert.Equal(t, 0.0, SizeFlow(math.NaN(), 20))
}

func TestMixingValveZeroFlow(t *testing.T) {
	v := MixingValve{}
	assert.Equal(t, MixResult{}, v.Flows(60, 40, 50, 0, 10))
}

func TestMixingValveIdentity(t *testing.T) {
	v := MixingValve{}
	res := v.Flows(45, 45, 45, 0.8, 10)

	assert.InDelta(t, 0.8, res.HotFlow, 1e-12)
	assert.Equal(t, 0.0, res.ColdFlow)
	assert.Equal(t, 45.0, res.SupplyTemp)
}

func TestMixingValveUnknownHot(t *testing.T) {
	v := MixingValve{}
	res := v.Flows(Unknown, 40, 50, 0.5, 10)

	assert.Equal(t, 0.0, res.HotFlow)
	assert.Equal(t, 0.5, res.ColdFlow)
	assert.Equal(t, 40.0, res.SupplyTemp)
}

func TestMixingValveColdAboveTarget(t *testing.T) {
	v := MixingValve{}
	res := v.Flows(70, 60, 50, 1, 10)

	assert.Equal(t, 0.0, res.HotFlow)
	assert.Equal(t, 60.0, res.SupplyTemp)
	// delivered heat matches 1 kg/s over 10 K
	assert.InDelta(t, 0.5, res.ColdFlow, 1e-12)
}

func TestMixingValveBothBelowTarget(t *testing.T) {
	v := MixingValve{}
	res := v.Flows(45, 35, 50, 1, 10)

	assert.Equal(t, 0.0, res.ColdFlow)
	assert.Equal(t, 45.0, res.SupplyTemp)
	assert.InDelta(t, 2.0, res.HotFlow, 1e-12)

	// a hot outlet at or below the return temperature delivers nothing
	res = v.Flows(38, 35, 50, 1, 10)
	assert.Equal(t, 0.0, res.HotFlow)
	assert.Equal(t, 38.0, res.SupplyTemp)
}

func TestMixingValveBlend(t *testing.T) {
	v := MixingValve{}
	res := v.Flows(70, 40, 50, 0.9, 10)

	assert.InDelta(t, 0.3, res.HotFlow, 1e-12)
	assert.InDelta(t, 0.6, res.ColdFlow, 1e-12)
	assert.Equal(t, 50.0, res.SupplyTemp)
	assert.InDelta(t, 0.9, res.Total(), 1e-12)
}

func TestMixingValveCapsBranch(t *testing.T) {
	v := MixingValve{MaxFlow: 0.5}
	hot, cold, target, total, dT := 70.0, 45.0, 55.0, 1.0, 15.0
	ret := target - dT

	res := v.Flows(hot, cold, target, total, dT)

	assert.Equal(t, 0.5, res.ColdFlow)
	assert.InDelta(t, 12.5/30, res.HotFlow, 1e-12)
	assert.InDelta(t, total*dT, res.HotFlow*(hot-ret)+res.ColdFlow*(cold-ret), 1e-9)
	assert.InDelta(t, (res.HotFlow*hot+res.ColdFlow*cold)/res.Total(), res.SupplyTemp, 1e-9)
	assert.Greater(t, res.SupplyTemp, target)
}

func TestMixingValveCapsBothBranches(t *testing.T) {
	v := MixingValve{MaxFlow: 0.2}
	res := v.Flows(70, 40, 50, 1, 10)

	assert.LessOrEqual(t, res.HotFlow, 0.2)
	assert.LessOrEqual(t, res.ColdFlow, 0.2)
	assert.GreaterOrEqual(t, res.SupplyTemp, 40.0)
	assert.LessOrEqual(t, res.SupplyTemp, 70.0)
}

func TestMixingValveReducedFlowIsCapped(t *testing.T) {
	v := MixingValve{MaxFlow: 1.5}
	res := v.Flows(45, 35, 50, 1, 10)
	assert.Equal(t, 1.5, res.HotFlow)
}
