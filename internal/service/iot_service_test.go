package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenvvay/Parking/internal/domain"
)

func TestBarrierCommander_DeliverOpensGate(t *testing.T) {
	client := &mockMQTT{}
	c := NewBarrierCommander(client, "", nil)
	assert.Equal(t, "iot-barrier", c.Name())

	err := c.Deliver(context.Background(), domain.FacilityEventNotification{
		EventID:       "ev-1",
		EventType:     domain.EventExit,
		GateDirection: domain.GateDirectionExit,
		Gate:          2,
		Vehicle:       car("A001AA"),
	})
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "parking/command/barriers/exit/2", aws.ToString(in.Topic))
	assert.Equal(t, int32(1), in.Qos)

	var cmd domain.BarrierControlCommandPayload
	require.NoError(t, json.Unmarshal(in.Payload, &cmd))
	assert.Equal(t, domain.BarrierControlCommandPayload{
		Command:   "open",
		Direction: domain.GateDirectionExit,
		Gate:      2,
		RequestID: "ev-1",
		VehicleID: "A001AA",
	}, cmd)
}

func TestBarrierCommander_SendTicket(t *testing.T) {
	client := &mockMQTT{}
	c := NewBarrierCommander(client, "lot7", nil)
	ticket := domain.NewTicket(uuid.New(), "A001AA", domain.TimeOfDay{Hour: 10}, monday10)

	require.NoError(t, c.SendTicket(context.Background(), 0, ticket))
	require.Len(t, client.inputs, 1)
	assert.Equal(t, "lot7/command/tickets/0", aws.ToString(client.inputs[0].Topic))

	var dto domain.TicketDTO
	require.NoError(t, json.Unmarshal(client.inputs[0].Payload, &dto))
	assert.Equal(t, ticket.ID().String(), dto.ID)
	assert.Equal(t, "10:00", dto.EntryTime.String())
}

func TestBarrierCommander_PublishError(t *testing.T) {
	boom := errors.New("throttled")
	c := NewBarrierCommander(&mockMQTT{Err: boom}, "", nil)

	err := c.SendBarrierCommand(context.Background(), domain.BarrierControlCommandPayload{Command: "close", Direction: domain.GateDirectionEntry})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "parking/command/barriers/entry/0")
}
