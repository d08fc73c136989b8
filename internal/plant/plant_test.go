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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParsePort(t *testing.T) {
	p, err := ParsePort("heat_out2")
	require.NoError(t, err)
	assert.Equal(t, HeatOut2, p)
	assert.Equal(t, "heat_out2", p.String())

	_, err = ParsePort("heat_sideways")
	assert.Error(t, err)
}

func TestParseLink(t *testing.T) {
	l, err := ParseLink("tank0.heat_out -> tank1.hp_out")
	require.NoError(t, err)
	assert.Equal(t, PortRef{Tank: 0, Port: HeatOut}, l.Src)
	assert.Equal(t, PortRef{Tank: 1, Port: HPOut}, l.Dst)
	assert.Equal(t, "tank0.heat_out -> tank1.hp_out", l.String())

	for _, bad := range []string{
		"tank0.heat_out",
		"tank0.heat_out -> tank0.heat_in",
		"tankA.heat_out -> tank1.heat_in",
		"tank0.nope -> tank1.heat_in",
	} {
		_, err := ParseLink(bad)
		assert.Error(t, err, bad)
	}
}

func TestLinkYAML(t *testing.T) {
	var links []Link
	require.NoError(t, yaml.Unmarshal([]byte("- tank0.heat_out -> tank1.heat_in\n- tank1.heat_out -> tank2.heat_in\n"), &links))
	require.Len(t, links, 2)
	assert.Equal(t, 2, links[1].Dst.Tank)

	out, err := yaml.Marshal(links)
	require.NoError(t, err)
	assert.Contains(t, string(out), "tank1.heat_out -> tank2.heat_in")
}

func TestGeneratorUptime(t *testing.T) {
	g := NewGenerator(CHP)
	assert.Equal(t, time.Duration(0), g.Uptime(time.Hour))

	assert.True(t, g.TurnOn(time.Hour))
	assert.False(t, g.TurnOn(2*time.Hour))
	assert.Equal(t, 30*time.Minute, g.Uptime(time.Hour+30*time.Minute))

	g.Demand = 1000
	assert.True(t, g.TurnOff())
	assert.Equal(t, 0.0, g.Demand)
	assert.Equal(t, time.Duration(0), g.Uptime(3*time.Hour))

	g.TurnOn(4 * time.Hour)
	assert.Equal(t, 15*time.Minute, g.Uptime(4*time.Hour+15*time.Minute))
}

func TestGeneratorKindNames(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseGeneratorKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseGeneratorKind("stirling")
	assert.Error(t, err)
}

func TestTankFlows(t *testing.T) {
	tank := NewTank(0, 3, 300)
	tank.Layers = []float64{30, 40, 50}
	assert.Equal(t, 30.0, tank.Bottom())
	assert.Equal(t, 50.0, tank.Top())
	assert.True(t, math.IsNaN(tank.Layer(3)))

	tank.Feed(HeatIn, 0.2, 30)
	tank.Feed(HeatIn, 0.2, 40)
	tank.Draw(HeatOut, 0.4)

	assert.InDelta(t, 35.0, tank.Port(HeatIn).Temp, 1e-12)
	assert.InDelta(t, 0.0, tank.NetFlow(), 1e-12)

	tank.ResetFlows()
	assert.Equal(t, 0.0, tank.Port(HeatIn).Flow)
	assert.InDelta(t, 35.0, tank.Port(HeatIn).Temp, 1e-12)
}
