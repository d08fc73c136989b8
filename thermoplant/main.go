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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/antst/thermoplant/internal"
	"github.com/antst/thermoplant/internal/config"
	"github.com/antst/thermoplant/internal/db"
	"github.com/antst/thermoplant/internal/inputs"
	"github.com/antst/thermoplant/internal/logger"
	"github.com/antst/thermoplant/internal/metrics"
	"github.com/antst/thermoplant/internal/safe_mqtt"
)

// Build version, overridden with flag during build.
var version = "devel"

func main() {
	logger.L().Warnf("Thermal plant dispatch simulator, version: %+v", version)

	err := run()
	if err != nil {
		logger.L().Error(err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Get()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	steps, err := inputs.Load(cfg.InputsFile, cfg.Step)
	if err != nil {
		return err
	}
	logger.L().Infof("Loaded %d steps from `%s`", len(steps), cfg.InputsFile)

	var opts []internal.Option

	if cfg.DBFile != "" {
		store, err := db.OpenDatabase(cfg.DBFile)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, internal.WithRecorder(internal.NewStoreRecorder(store, cfg)))
	}

	if cfg.MQTTConfig.Enabled {
		client, err := safe_mqtt.Connect(ctx, cfg.MQTTConfig.URL, "thermoplant-"+uuid.New().String(), logger.Named("mqtt"))
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, internal.WithPublisher(internal.NewPublisher(client, cfg.MQTTConfig.Topic, logger.Named("publisher"))))
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := metrics.New(reg)
		if err != nil {
			return err
		}
		opts = append(opts, internal.WithMetrics(m))
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				logger.L().Error(err)
			}
		}()
		logger.L().Infof("Serving metrics on %s/metrics", cfg.MetricsAddr)
	}

	sim, err := internal.NewSimulation(cfg, logger.Named("sim"), opts...)
	if err != nil {
		return err
	}

	sum, err := sim.Run(ctx, steps)
	if err != nil {
		return err
	}
	logger.L().Infof(
		"Run %s: %d steps, starts %v, ideal heater %.1f kWh, fuel %.2f m3",
		sum.RunID, sum.Steps, sum.Starts, sum.IdealHeaterEnergy/3.6e6, sum.Fuel,
	)
	for kind, e := range sum.Produced {
		logger.L().Infof("%s produced %.1f kWh", kind, e/3.6e6)
	}
	return nil
}
