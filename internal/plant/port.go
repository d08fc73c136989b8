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
	"strings"
)

// PortID names a tank connection.
type PortID int

const (
	HeatIn PortID = iota
	HeatOut
	HeatIn2
	HeatOut2
	HPIn
	HPOut
	CHPIn
	CHPOut
	BoilerIn
	BoilerOut

	NumPorts
)

var portNames = [NumPorts]string{
	HeatIn:    "heat_in",
	HeatOut:   "heat_out",
	HeatIn2:   "heat_in2",
	HeatOut2:  "heat_out2",
	HPIn:      "hp_in",
	HPOut:     "hp_out",
	CHPIn:     "chp_in",
	CHPOut:    "chp_out",
	BoilerIn:  "boiler_in",
	BoilerOut: "boiler_out",
}

func (p PortID) String() string {
	if p < 0 || p >= NumPorts {
		return "port(" + strconv.Itoa(int(p)) + ")"
	}
	return portNames[p]
}

func ParsePort(name string) (PortID, error) {
	for i, n := range portNames {
		if n == name {
			return PortID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown port `%s`", name)
}

// MarshalYAML writes the port by name.
func (p PortID) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML reads a port name.
func (p *PortID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParsePort(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Port carries one connection's mass flow (kg/s, inflow positive) and temperature.
type Port struct {
	Flow float64
	Temp float64
}

// PortRef addresses a port on a given tank, written as `tank<N>.<port>`.
type PortRef struct {
	Tank int
	Port PortID
}

func (r PortRef) String() string {
	return "tank" + strconv.Itoa(r.Tank) + "." + r.Port.String()
}

func ParsePortRef(s string) (PortRef, error) {
	s = strings.TrimSpace(s)
	tank, port, ok := strings.Cut(s, ".")
	if !ok {
		return PortRef{}, fmt.Errorf("malformed port reference `%s`", s)
	}
	idx, err := parseTankName(tank)
	if err != nil {
		return PortRef{}, err
	}
	p, err := ParsePort(port)
	if err != nil {
		return PortRef{}, err
	}
	return PortRef{Tank: idx, Port: p}, nil
}

func (r PortRef) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

func (r *PortRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParsePortRef(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func parseTankName(s string) (int, error) {
	if !strings.HasPrefix(s, "tank") {
		return 0, fmt.Errorf("malformed tank name `%s`", s)
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(s, "tank"))
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("malformed tank name `%s`", s)
	}
	return idx, nil
}
