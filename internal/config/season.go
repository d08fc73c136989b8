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

package config

import "github.com/antst/thermoplant/internal/plant"

var defaultWinterMonths = []int{1, 2, 3, 4, 10, 11, 12}

const (
	defaultDayStart         = 6
	defaultDayEnd           = 22
	defaultSurplusThreshold = 10.0
)

// SeasonConfig decides the controller context from the step timestamp.
type SeasonConfig struct {
	WinterMonths []int `yaml:"winter_months"`
	DayStart     *int  `yaml:"day_start"`
	DayEnd       *int  `yaml:"day_end"`
}

func NewSeasonConfig() *SeasonConfig {
	cfg := &SeasonConfig{}
	cfg.FillDefaults()
	return cfg
}

func (c *SeasonConfig) FillDefaults() {
	if len(c.WinterMonths) == 0 {
		c.WinterMonths = append([]int(nil), defaultWinterMonths...)
	}
	if c.DayStart == nil {
		c.DayStart = GetPTR(defaultDayStart)
	}
	if c.DayEnd == nil {
		c.DayEnd = GetPTR(defaultDayEnd)
	}
}

func (c *SeasonConfig) Validate() error {
	for _, m := range c.WinterMonths {
		if m < 1 || m > 12 {
			return plant.NewConfigurationError("season.winter_months", "no month %d", m)
		}
	}
	if *c.DayStart < 0 || *c.DayEnd > 24 || *c.DayStart >= *c.DayEnd {
		return plant.NewConfigurationError("season.day_start", "day hours %d-%d", *c.DayStart, *c.DayEnd)
	}
	return nil
}

// SurplusConfig gates heat pump surplus charging: PV plus CHP electrical
// output minus the predicted electrical demand must exceed Threshold W.
type SurplusConfig struct {
	Threshold *float64 `yaml:"threshold"`
}

func NewSurplusConfig() *SurplusConfig {
	cfg := &SurplusConfig{}
	cfg.FillDefaults()
	return cfg
}

func (c *SurplusConfig) FillDefaults() {
	if c.Threshold == nil {
		c.Threshold = GetPTR(defaultSurplusThreshold)
	}
}
