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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes run progress of a simulation as Prometheus metrics.
type Collector struct {
	steps       prometheus.Counter
	starts      *prometheus.CounterVec
	demand      *prometheus.GaugeVec
	idealHeater prometheus.Counter
}

// New registers the collectors on reg, the default registerer when nil.
// Collectors registered before are reused.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermoplant_steps_total",
			Help: "Simulation steps completed",
		}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermoplant_generator_starts_total",
			Help: "Off to on transitions per generator",
		}, []string{"generator"}),
		demand: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "thermoplant_generator_demand_watts",
			Help: "Thermal demand sent to each generator in the last step",
		}, []string{"generator"}),
		idealHeater: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermoplant_ideal_heater_energy_joules_total",
			Help: "Energy the ideal heating rod had to add to reach the supply temperature",
		}),
	}

	var err error
	if c.steps, err = register(reg, c.steps); err != nil {
		return nil, err
	}
	if c.starts, err = register(reg, c.starts); err != nil {
		return nil, err
	}
	if c.demand, err = register(reg, c.demand); err != nil {
		return nil, err
	}
	if c.idealHeater, err = register(reg, c.idealHeater); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (c *Collector) ObserveStep() {
	c.steps.Inc()
}

func (c *Collector) ObserveStart(generator string) {
	c.starts.WithLabelValues(generator).Inc()
}

func (c *Collector) ObserveDemand(generator string, watts float64) {
	c.demand.WithLabelValues(generator).Set(watts)
}

func (c *Collector) AddIdealHeaterEnergy(joules float64) {
	if joules > 0 {
		c.idealHeater.Add(joules)
	}
}
