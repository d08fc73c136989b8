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

package safe_mqtt

import (
	"context"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	reconnectInterval = 2 * time.Second
	connectAttempts   = 5
	disconnectQuiesce = 250
)

// MqttClient is bridge between our app and MQTT
type MqttClient interface {
	SafePublish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Close()
}

type mqttClient struct {
	mutex sync.Mutex
	mqtt  mqtt.Client
}

// Connect dials the broker at url, retrying a few times before giving up.
func Connect(ctx context.Context, url, clientID string, log *zap.SugaredLogger) (MqttClient, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(reconnectInterval)

	opts.OnConnect = func(client mqtt.Client) {
		or := client.OptionsReader()
		log.Infof("Connected to MQTT broker: %v as %s", or.Servers(), or.ClientID())
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Warnf("Connection to MQTT broker lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	if err := connect(ctx, client, log); err != nil {
		return nil, err
	}
	return &mqttClient{mqtt: client}, nil
}

func connect(ctx context.Context, client mqtt.Client, log *zap.SugaredLogger) error {
	var err error
	for i := 0; i < connectAttempts; i++ {
		token := client.Connect()
		if token.Wait() && token.Error() == nil {
			return nil
		}
		err = token.Error()
		log.Warnf("Connection failed, retrying in %v: %v", reconnectInterval, err)

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "mqtt connect")
		case <-time.After(reconnectInterval):
		}
	}
	return errors.Wrapf(err, "mqtt connect: %d attempts", connectAttempts)
}

func (m *mqttClient) SafePublish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.mqtt.Publish(topic, qos, retained, payload)
}

func (m *mqttClient) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.mqtt.Disconnect(disconnectQuiesce)
}
