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

package plant

import (
	"fmt"
	"strconv"
	"time"
)

// GeneratorKind is the closed set of heat sources.
type GeneratorKind int

const (
	HeatPump GeneratorKind = iota
	CHP
	Boiler

	NumGenerators
)

var generatorNames = [NumGenerators]string{
	HeatPump: "hp",
	CHP:      "chp",
	Boiler:   "boiler",
}

func (k GeneratorKind) String() string {
	if k < 0 || k >= NumGenerators {
		return "generator(" + strconv.Itoa(int(k)) + ")"
	}
	return generatorNames[k]
}

func ParseGeneratorKind(s string) (GeneratorKind, error) {
	for i, n := range generatorNames {
		if n == s {
			return GeneratorKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown generator `%s`", s)
}

// Kinds lists generators in dispatch order.
func Kinds() []GeneratorKind {
	return []GeneratorKind{HeatPump, CHP, Boiler}
}

type Status int

const (
	Off Status = iota
	On
)

func (s Status) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// Generator is the per-step record of one heat source. Supply, MassFlow and
// OutletTemp are measurements from the generator's own model, one step old.
type Generator struct {
	Kind       GeneratorKind
	Status     Status
	Demand     float64
	Supply     float64
	MassFlow   float64
	OutletTemp float64
	OnSince    time.Duration
}

func NewGenerator(kind GeneratorKind) *Generator {
	return &Generator{Kind: kind}
}

// Uptime is the simulation time elapsed since the last off->on transition.
func (g *Generator) Uptime(now time.Duration) time.Duration {
	if g.Status != On || now < g.OnSince {
		return 0
	}
	return now - g.OnSince
}

// TurnOn switches the generator on at now; it is a no-op when already on.
func (g *Generator) TurnOn(now time.Duration) bool {
	if g.Status == On {
		return false
	}
	g.Status = On
	g.OnSince = now
	return true
}

// TurnOff switches the generator off and clears its demand.
func (g *Generator) TurnOff() bool {
	wasOn := g.Status == On
	g.Status = Off
	g.Demand = 0
	return wasOn
}
