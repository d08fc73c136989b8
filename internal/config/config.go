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

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pborman/getopt/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/antst/thermoplant/internal/balance"
	"github.com/antst/thermoplant/internal/logger"
	"github.com/antst/thermoplant/internal/plant"
)

const (
	defaultMQTTURL    = "tcp://127.0.0.1:1883"
	defaultMQTTTopic  = "thermoplant"
	defaultConfigFile = "config.yaml"
	defaultInputsFile = "inputs.yaml"
	defaultStep       = 15 * time.Minute
	defaultLayers     = 3
)

func GetPTR[T any](v T) *T {
	return &v
}

type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Topic   string `yaml:"topic"`
}

func NewMQTTConfig() *MQTTConfig {
	return &MQTTConfig{URL: defaultMQTTURL, Topic: defaultMQTTTopic}
}

type Config struct {
	LogLevel    zapcore.Level               `yaml:"log_level"`
	Step        time.Duration               `yaml:"step"`
	IdealHeater bool                        `yaml:"ideal_heater"`
	Balancer    string                      `yaml:"balancer"`
	DBFile      string                      `yaml:"db_file,omitempty"`
	InputsFile  string                      `yaml:"inputs_file"`
	MetricsAddr string                      `yaml:"metrics_addr,omitempty"`
	MQTTConfig  *MQTTConfig                 `yaml:"mqtt"`
	Season      *SeasonConfig               `yaml:"season"`
	Surplus     *SurplusConfig              `yaml:"surplus"`
	Circuits    *CircuitsConfig             `yaml:"circuits"`
	Tanks       []*TankConfig               `yaml:"tanks"`
	Links       []plant.Link                `yaml:"links"`
	Generators  map[string]*GeneratorConfig `yaml:"generators"`
}

func defConfig() *Config {
	return &Config{
		LogLevel:   zapcore.InfoLevel,
		Step:       defaultStep,
		InputsFile: defaultInputsFile,
		MQTTConfig: NewMQTTConfig(),
		Season:     NewSeasonConfig(),
		Surplus:    NewSurplusConfig(),
		Circuits:   NewCircuitsConfig(),
		Generators: make(map[string]*GeneratorConfig),
	}
}

func prettyPrint(cfg *Config) {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		logger.L().Error("Failed to marshal config for pretty print", err)
		return
	}
	logger.L().Debugf("--- Config ---\n%s\n\n", string(d))
}

func (cfg *Config) FillDefaults() {
	if cfg.Step <= 0 {
		cfg.Step = defaultStep
	}
	if cfg.MQTTConfig == nil {
		cfg.MQTTConfig = NewMQTTConfig()
	}
	if cfg.MQTTConfig.Topic == "" {
		cfg.MQTTConfig.Topic = defaultMQTTTopic
	}
	if cfg.Season == nil {
		cfg.Season = NewSeasonConfig()
	}
	cfg.Season.FillDefaults()
	if cfg.Surplus == nil {
		cfg.Surplus = NewSurplusConfig()
	}
	cfg.Surplus.FillDefaults()
	if cfg.Circuits == nil {
		cfg.Circuits = NewCircuitsConfig()
	}
	cfg.Circuits.FillDefaults(len(cfg.Tanks))

	for _, t := range cfg.Tanks {
		t.FillDefaults()
	}
	for _, g := range cfg.Generators {
		if g != nil {
			g.FillDefaults()
		}
	}
}

// Generator returns the configuration of kind, nil when the plant has no such generator.
func (cfg *Config) Generator(kind plant.GeneratorKind) *GeneratorConfig {
	return cfg.Generators[kind.String()]
}

// Validate reports the first inconsistency as a *plant.ConfigurationError.
func (cfg *Config) Validate() error {
	if cfg.Step <= 0 {
		return plant.NewConfigurationError("step", "must be positive")
	}
	if _, err := balance.New(cfg.Balancer); err != nil {
		return err
	}
	if len(cfg.Tanks) == 0 {
		return plant.NewConfigurationError("tanks", "at least one tank is required")
	}
	for i, t := range cfg.Tanks {
		if err := t.Validate(fmt.Sprintf("tanks[%d]", i)); err != nil {
			return err
		}
	}
	for _, l := range cfg.Links {
		for _, r := range []plant.PortRef{l.Src, l.Dst} {
			if r.Tank >= len(cfg.Tanks) {
				return plant.NewConfigurationError("links", "`%s` refers to a missing tank", l)
			}
		}
	}
	if err := cfg.Season.Validate(); err != nil {
		return err
	}
	if err := cfg.Circuits.Validate(cfg.Tanks); err != nil {
		return err
	}

	for name, g := range cfg.Generators {
		kind, err := plant.ParseGeneratorKind(name)
		if err != nil {
			return plant.NewConfigurationError("generators", "%v", err)
		}
		if g == nil {
			return plant.NewConfigurationError("generators."+name, "empty configuration")
		}
		if err := g.Validate(kind, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Load reads, completes and validates a configuration file. A missing file
// yields the defaults, which fail validation for lack of tanks.
func Load(path string) (*Config, error) {
	cfg := defConfig()
	if err := readFile(cfg, path); err != nil {
		return nil, err
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "config file `%s`", path)
	}
	return cfg, nil
}

// Get parses the command line and loads the configuration it names. Flags
// override the file.
func Get() (*Config, error) {
	logLevel := getopt.StringLong("log-level", 'l', "", "log levels: debug, info, warn, error, dpanic, panic, fatal")
	configFile := getopt.StringLong("config", 'c', defaultConfigFile, "config file pathname")
	inputsFile := getopt.StringLong("inputs", 'i', "", "step inputs file pathname")
	dbFile := getopt.StringLong("db", 'd', "", "record steps into this SQLite file")
	mqttURL := getopt.StringLong("mqtt", 'm', "", "publish generator status to this MQTT broker")
	metricsAddr := getopt.StringLong("metrics-addr", 0, "", "serve Prometheus metrics on this address")

	getopt.Parse()

	cfg, err := Load(*configFile)
	if err != nil {
		return nil, err
	}
	logger.L().Infof("Using config file `%v`", *configFile)

	if *inputsFile != "" {
		cfg.InputsFile = *inputsFile
	}
	if *dbFile != "" {
		cfg.DBFile = *dbFile
	}
	if cfg.DBFile != "" {
		logger.L().Infof("Using DB file `%v`", cfg.DBFile)
	}
	if *mqttURL != "" {
		cfg.MQTTConfig.URL = *mqttURL
		cfg.MQTTConfig.Enabled = true
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if *logLevel != "" {
		if err := cfg.LogLevel.Set(*logLevel); err != nil {
			logger.L().Errorf("Wrong log level `%v`: %v", *logLevel, err)
		}
	}
	logger.SetLogLevel(cfg.LogLevel)

	prettyPrint(cfg)

	return cfg, nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

func readFile(cfg *Config, configFileName string) error {
	if !fileExists(configFileName) {
		return nil
	}

	f, err := os.Open(configFileName)
	if err != nil {
		return errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	return Parse(cfg, data)
}

// Parse decodes YAML into cfg without completing or validating it.
func Parse(cfg *Config, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}
	return nil
}

// FromYAML builds a complete, validated configuration from a document.
func FromYAML(data []byte) (*Config, error) {
	cfg := defConfig()
	if err := Parse(cfg, data); err != nil {
		return nil, err
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
