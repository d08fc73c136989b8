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
	"strings"
)

const linkArrow = "->"

// Link is a directed balancing edge between two tank ports.
type Link struct {
	Src PortRef
	Dst PortRef
}

func (l Link) String() string {
	return l.Src.String() + " " + linkArrow + " " + l.Dst.String()
}

// ParseLink reads `tank0.heat_out -> tank1.hp_out`.
func ParseLink(s string) (Link, error) {
	src, dst, ok := strings.Cut(s, linkArrow)
	if !ok {
		return Link{}, fmt.Errorf("malformed link `%s`", s)
	}
	from, err := ParsePortRef(src)
	if err != nil {
		return Link{}, err
	}
	to, err := ParsePortRef(dst)
	if err != nil {
		return Link{}, err
	}
	if from.Tank == to.Tank {
		return Link{}, fmt.Errorf("link `%s` connects a tank to itself", s)
	}
	return Link{Src: from, Dst: to}, nil
}

func (l Link) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

func (l *Link) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseLink(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}
