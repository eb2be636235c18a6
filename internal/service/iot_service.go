package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"go.uber.org/zap"

	"github.com/greenvvay/Parking/internal/domain"
)

// MQTTPublisher is the IoT data plane call used to reach gate controllers.
type MQTTPublisher interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// BarrierCommander sends barrier and ticket commands to the gate controller
// over MQTT. As a notification sink it opens the barrier of every gate that
// just accepted a vehicle.
type BarrierCommander struct {
	client      MQTTPublisher
	topicPrefix string
	log         *zap.Logger
}

func NewBarrierCommander(client MQTTPublisher, topicPrefix string, log *zap.Logger) *BarrierCommander {
	if topicPrefix == "" {
		topicPrefix = "parking"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BarrierCommander{client: client, topicPrefix: topicPrefix, log: log}
}

func (c *BarrierCommander) Name() string { return "iot-barrier" }

func (c *BarrierCommander) Deliver(ctx context.Context, n domain.FacilityEventNotification) error {
	return c.SendBarrierCommand(ctx, domain.BarrierControlCommandPayload{
		Command:   "open",
		Direction: n.GateDirection,
		Gate:      n.Gate,
		RequestID: n.EventID,
		VehicleID: n.Vehicle.ID,
	})
}

func (c *BarrierCommander) BarrierTopic(direction domain.GateDirection, gate int) string {
	return fmt.Sprintf("%s/command/barriers/%s/%d", c.topicPrefix, direction, gate)
}

func (c *BarrierCommander) TicketTopic(gate int) string {
	return fmt.Sprintf("%s/command/tickets/%d", c.topicPrefix, gate)
}

func (c *BarrierCommander) SendBarrierCommand(ctx context.Context, cmd domain.BarrierControlCommandPayload) error {
	topic := c.BarrierTopic(cmd.Direction, cmd.Gate)
	if err := c.publish(ctx, topic, cmd); err != nil {
		return fmt.Errorf("barrier command %q: %w", cmd.Command, err)
	}
	c.log.Info("barrier command sent",
		zap.String("topic", topic), zap.String("command", cmd.Command), zap.String("request_id", cmd.RequestID))
	return nil
}

// SendTicket hands a freshly issued ticket to the entry gate's printer.
func (c *BarrierCommander) SendTicket(ctx context.Context, gate int, ticket *domain.Ticket) error {
	if err := c.publish(ctx, c.TicketTopic(gate), ticket.DTO()); err != nil {
		return fmt.Errorf("ticket %s: %w", ticket.ID(), err)
	}
	return nil
}

func (c *BarrierCommander) publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = c.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: body,
	})
	if err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, err)
	}
	return nil
}
