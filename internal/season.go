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
	"time"

	"github.com/antst/thermoplant/internal/config"
)

// Context is what the controller knows about the moment of a step.
type Context struct {
	Winter  bool
	Day     bool
	Surplus bool
}

func (c Context) String() string {
	s := "summer"
	if c.Winter {
		s = "winter"
	}
	if c.Day {
		s += "/day"
	} else {
		s += "/night"
	}
	if c.Surplus {
		s += "/surplus"
	}
	return s
}

type seasonClock struct {
	winter   [13]bool
	dayStart int
	dayEnd   int
}

func newSeasonClock(cfg *config.SeasonConfig) seasonClock {
	c := seasonClock{dayStart: *cfg.DayStart, dayEnd: *cfg.DayEnd}
	for _, m := range cfg.WinterMonths {
		c.winter[m] = true
	}
	return c
}

func (c seasonClock) at(t time.Time) Context {
	h := t.Hour()
	return Context{
		Winter: c.winter[t.Month()],
		Day:    h >= c.dayStart && h < c.dayEnd,
	}
}

// surplus reports whether PV and CHP electrical output exceed the predicted
// electrical demand by more than threshold W.
func surplus(pv, chpElec, elDemand, threshold float64) bool {
	return pv+chpElec-elDemand > threshold
}
