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
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/antst/thermoplant/internal/plant"
	"github.com/antst/thermoplant/internal/safe_mqtt"
)

const mqttQoS = 1

// Publisher mirrors generator status and demand to MQTT after every step,
// retained, as `<topic>/<generator>/status` (ON/OFF) and
// `<topic>/<generator>/demand` (W).
type Publisher struct {
	mqtt  safe_mqtt.MqttClient
	topic string
	log   *zap.SugaredLogger
}

func NewPublisher(client safe_mqtt.MqttClient, topic string, log *zap.SugaredLogger) *Publisher {
	return &Publisher{mqtt: client, topic: topic, log: log}
}

func (p *Publisher) Publish(out *StepOutput) error {
	for _, kind := range plant.Kinds() {
		g, ok := out.Generators[kind]
		if !ok {
			continue
		}

		status := "OFF"
		if g.Status == plant.On {
			status = "ON"
		}
		if err := p.send(kind.String()+"/status", status); err != nil {
			return err
		}
		if err := p.send(kind.String()+"/demand", fmt.Sprintf("%.1f", g.Demand)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) send(suffix, payload string) error {
	topic := p.topic + "/" + suffix
	if token := p.mqtt.SafePublish(topic, mqttQoS, true, payload); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "publish %s", topic)
	}
	p.log.Debugf("Published %s = %s", topic, payload)
	return nil
}
