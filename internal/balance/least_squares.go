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

package balance

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/antst/thermoplant/internal/plant"
)

const defaultRCond = 1e-12

// LeastSquaresBalancer solves all link flows at once from the tank by link
// incidence matrix, so it also handles cyclic topologies. A positive link
// flow runs source to destination.
type LeastSquaresBalancer struct {
	RCond float64
}

func (b LeastSquaresBalancer) Balance(tanks []*plant.Tank, links []plant.Link) error {
	if err := validate(tanks, links); err != nil {
		return err
	}
	if len(links) == 0 {
		return Check(tanks)
	}

	for _, l := range links {
		tanks[l.Src.Tank].Port(l.Src.Port).Flow = 0
		tanks[l.Dst.Tank].Port(l.Dst.Port).Flow = 0
	}

	a := mat.NewDense(len(tanks), len(links), nil)
	for j, l := range links {
		a.Set(l.Src.Tank, j, a.At(l.Src.Tank, j)-1)
		a.Set(l.Dst.Tank, j, a.At(l.Dst.Tank, j)+1)
	}
	known := make([]float64, len(tanks))
	for i, t := range tanks {
		known[i] = t.NetFlow()
	}
	floats.Scale(-1, known)
	rhs := mat.NewVecDense(len(tanks), known)

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return errors.New("incidence matrix factorization failed")
	}
	rcond := b.RCond
	if rcond <= 0 {
		rcond = defaultRCond
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return Check(tanks)
	}

	var x mat.VecDense
	svd.SolveVecTo(&x, rhs, rank)

	for j, l := range links {
		flow := x.AtVec(j)
		sp := tanks[l.Src.Tank].Port(l.Src.Port)
		dp := tanks[l.Dst.Tank].Port(l.Dst.Port)
		sp.Flow -= flow
		dp.Flow += flow
		if flow > 0 {
			dp.Temp = sp.Temp
		} else {
			sp.Temp = dp.Temp
		}
	}
	return Check(tanks)
}
