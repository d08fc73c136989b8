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

package thermo_model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeatingCurveInterpolates(t *testing.T) {
	c := HeatingCurve{Cold: CurvePoint{Ambient: -10, Supply: 60}, Warm: CurvePoint{Ambient: 20, Supply: 30}}

	assert.InDelta(t, 60.0, c.SupplyTemp(-10), 1e-9)
	assert.InDelta(t, 30.0, c.SupplyTemp(20), 1e-9)
	assert.InDelta(t, 45.0, c.SupplyTemp(5), 1e-9)
}

func TestHeatingCurveClampsOutsideCalibration(t *testing.T) {
	c := HeatingCurve{Cold: CurvePoint{Ambient: -10, Supply: 60}, Warm: CurvePoint{Ambient: 20, Supply: 30}}

	assert.Equal(t, 60.0, c.SupplyTemp(-25))
	assert.Equal(t, 30.0, c.SupplyTemp(35))
}

func TestHeatingCurveAcceptsSwappedPoints(t *testing.T) {
	c := HeatingCurve{Cold: CurvePoint{Ambient: 20, Supply: 30}, Warm: CurvePoint{Ambient: -10, Supply: 60}}
	assert.InDelta(t, 45.0, c.SupplyTemp(5), 1e-9)
}

func TestDefaultCurves(t *testing.T) {
	c, ok := DefaultCurve("renovated")
	assert.True(t, ok)
	assert.Greater(t, c.SupplyTemp(-12), c.SupplyTemp(10))

	_, ok = DefaultCurve("igloo")
	assert.False(t, ok)
}

func TestPolynomial(t *testing.T) {
	coeff := []float64{-2.63, 3.9, 0.57}

	assert.InDelta(t, -2.63, Polynomial(coeff, 0), 1e-12)
	assert.InDelta(t, -2.63+3.9*2+0.57*4, Polynomial(coeff, 2), 1e-12)
	assert.Equal(t, 0.0, Polynomial(nil, 3))
}

func TestPolynomialHighOrder(t *testing.T) {
	coeff := make([]float64, 11)
	coeff[10] = 1
	assert.InDelta(t, 1024.0, Polynomial(coeff, 2), 1e-9)
}
