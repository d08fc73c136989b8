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

// CurvePoint is one calibration point of a heating curve: at Ambient °C the
// space heating circuit needs Supply °C.
type CurvePoint struct {
	Ambient float64 `yaml:"ambient"`
	Supply  float64 `yaml:"supply"`
}

// HeatingCurve maps ambient temperature to the required supply temperature
// by linear interpolation between two calibration points. Outside the
// calibrated range the supply temperature is held at the nearest point.
type HeatingCurve struct {
	Cold CurvePoint `yaml:"cold"`
	Warm CurvePoint `yaml:"warm"`
}

func (c HeatingCurve) SupplyTemp(ambient float64) float64 {
	lo, hi := c.Cold, c.Warm
	if lo.Ambient > hi.Ambient {
		lo, hi = hi, lo
	}
	if ambient <= lo.Ambient {
		return lo.Supply
	}
	if ambient >= hi.Ambient || hi.Ambient == lo.Ambient {
		return hi.Supply
	}
	return lo.Supply + (ambient-lo.Ambient)*(hi.Supply-lo.Supply)/(hi.Ambient-lo.Ambient)
}

// Calibration points per building insulation class.
var defaultCurves = map[string]HeatingCurve{
	"unrenovated": {Cold: CurvePoint{Ambient: -12, Supply: 70}, Warm: CurvePoint{Ambient: 15, Supply: 35}},
	"renovated":   {Cold: CurvePoint{Ambient: -12, Supply: 55}, Warm: CurvePoint{Ambient: 15, Supply: 30}},
	"kfw55":       {Cold: CurvePoint{Ambient: -12, Supply: 45}, Warm: CurvePoint{Ambient: 15, Supply: 28}},
	"kfw40":       {Cold: CurvePoint{Ambient: -12, Supply: 35}, Warm: CurvePoint{Ambient: 15, Supply: 25}},
}

// DefaultCurve returns the built-in curve of a building class.
func DefaultCurve(class string) (HeatingCurve, bool) {
	c, ok := defaultCurves[class]
	return c, ok
}

const maxPower = 8

// Polynomial evaluates sum(coeff[i] * x^i), intercept first.
func Polynomial(coeff []float64, x float64) float64 {
	var pwr [maxPower + 1]float64
	pwr[0] = 1.0
	for i := 1; i <= maxPower && i < len(coeff); i++ {
		pwr[i] = pwr[i-1] * x
	}

	v := 0.0
	for i, c := range coeff {
		if i > maxPower {
			// beyond the power table
			p := pwr[maxPower]
			for j := maxPower; j < i; j++ {
				p *= x
			}
			v += c * p
			continue
		}
		v += c * pwr[i]
	}
	return v
}
