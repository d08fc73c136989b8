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
	"math"

	"github.com/pkg/errors"

	"github.com/antst/thermoplant/internal/plant"
)

// Balancer assigns the flows of the link ports so that every tank's port
// flows sum to zero. Flows of all other ports are inputs.
type Balancer interface {
	Balance(tanks []*plant.Tank, links []plant.Link) error
}

// New returns the balancer registered under name. The empty name selects the
// ordered-link balancer.
func New(name string) (Balancer, error) {
	switch name {
	case "", "chain":
		return ChainBalancer{}, nil
	case "least_squares":
		return LeastSquaresBalancer{}, nil
	}
	return nil, plant.NewConfigurationError("balancer", "unknown balancer `%s`", name)
}

// Check returns a *plant.BalanceError for the first tank whose net flow
// exceeds plant.BalanceTolerance.
func Check(tanks []*plant.Tank) error {
	for _, t := range tanks {
		if net := t.NetFlow(); math.Abs(net) >= plant.BalanceTolerance || math.IsNaN(net) {
			return &plant.BalanceError{Tank: t.Index, NetFlow: net}
		}
	}
	return nil
}

func validate(tanks []*plant.Tank, links []plant.Link) error {
	for _, l := range links {
		for _, r := range []plant.PortRef{l.Src, l.Dst} {
			if r.Tank < 0 || r.Tank >= len(tanks) {
				return errors.Wrapf(plant.NewConfigurationError("links", "no tank for `%s`", r), "link %s", l)
			}
		}
	}
	return nil
}

// ChainBalancer walks the links in order. The source tank's residual, the
// sum of its other port flows, leaves through the link: a positive residual
// flows source to destination, otherwise destination to source, and the
// receiving port takes the temperature of the sending one. It needs the links
// to form a chain or tree rooted at the first source.
type ChainBalancer struct{}

func (ChainBalancer) Balance(tanks []*plant.Tank, links []plant.Link) error {
	if err := validate(tanks, links); err != nil {
		return err
	}

	for _, l := range links {
		src, dst := tanks[l.Src.Tank], tanks[l.Dst.Tank]
		sp, dp := src.Port(l.Src.Port), dst.Port(l.Dst.Port)

		sp.Flow = 0
		residual := src.NetFlow()

		sp.Flow = -residual
		dp.Flow = residual
		if residual > 0 {
			dp.Temp = sp.Temp
		} else {
			sp.Temp = dp.Temp
		}
	}
	return Check(tanks)
}
