package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/metrics"
	"github.com/greenvvay/Parking/internal/repository"
)

// ErrMalformedMessage marks queue messages that can never be processed.
var ErrMalformedMessage = errors.New("malformed gate message")

// Message outcomes stored in the gate message log.
const (
	StatusProcessed = "processed"
	StatusRejected  = "rejected"
	StatusError     = "error"
	StatusIgnored   = "ignored"
)

// TicketSender delivers issued tickets to the entry gate. Implemented by
// BarrierCommander.
type TicketSender interface {
	SendTicket(ctx context.Context, gate int, ticket *domain.Ticket) error
}

// GateEventService turns gate controller messages from the queue into
// ParkingService calls.
type GateEventService struct {
	parking *ParkingService
	tickets TicketSender
	msgLog  repository.GateMessageLogRepository
	metrics *metrics.Metrics
	log     *zap.Logger

	controllers repository.GateControllerRepository
}

func NewGateEventService(ps *ParkingService, tickets TicketSender, msgLog repository.GateMessageLogRepository, m *metrics.Metrics, log *zap.Logger) *GateEventService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GateEventService{parking: ps, tickets: tickets, msgLog: msgLog, metrics: m, log: log}
}

// TrackControllers records every message sender in repo.
func (s *GateEventService) TrackControllers(repo repository.GateControllerRepository) {
	s.controllers = repo
}

// HandleGateMessage processes one message body. A refused passage is a
// normal outcome and returns nil; ErrMalformedMessage means the message
// should be dropped; any other error means it may be retried.
func (s *GateEventService) HandleGateMessage(ctx context.Context, body string) error {
	var generic domain.GenericGateMessage
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		s.archive(ctx, generic, json.RawMessage(nil), StatusError, err.Error())
		s.metrics.GateMessage("unknown", ErrMalformedMessage)
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	generic.RawPayload = json.RawMessage(body)

	var (
		gateErr error
		err     error
	)
	switch generic.MessageType {
	case domain.MessageGateEntry:
		var ev domain.GateEntryEvent
		if err = json.Unmarshal(generic.RawPayload, &ev); err == nil {
			gateErr = s.handleEntry(ctx, generic, ev)
		}
	case domain.MessageGateExit:
		var ev domain.GateExitEvent
		if err = json.Unmarshal(generic.RawPayload, &ev); err == nil {
			gateErr = s.parking.Exit(ctx, ev.Gate, ev.Vehicle, ev.TicketID, generic.ParsedTimestamp())
		}
	case domain.MessagePayment:
		var ev domain.PaymentTerminalEvent
		if err = json.Unmarshal(generic.RawPayload, &ev); err == nil {
			var res domain.PaymentResultDTO
			res, gateErr = s.parking.Pay(ctx, ev.TicketID, ev.Amount)
			if gateErr == nil && !res.Accepted {
				gateErr = fmt.Errorf("payment of %v below due %v", ev.Amount, res.Due)
			}
		}
	default:
		s.log.Info("unhandled gate message type", zap.String("message_type", generic.MessageType), zap.String("device_id", generic.DeviceID))
		s.archive(ctx, generic, generic.RawPayload, StatusIgnored, "")
		s.metrics.GateMessage(generic.MessageType, nil)
		return nil
	}

	if err != nil {
		s.archive(ctx, generic, generic.RawPayload, StatusError, err.Error())
		s.metrics.GateMessage(generic.MessageType, ErrMalformedMessage)
		return fmt.Errorf("%w: %s: %v", ErrMalformedMessage, generic.MessageType, err)
	}

	s.metrics.GateMessage(generic.MessageType, gateErr)
	if gateErr != nil {
		s.archive(ctx, generic, generic.RawPayload, StatusRejected, gateErr.Error())
		return nil
	}
	s.archive(ctx, generic, generic.RawPayload, StatusProcessed, "")
	return nil
}

func (s *GateEventService) handleEntry(ctx context.Context, generic domain.GenericGateMessage, ev domain.GateEntryEvent) error {
	ticket, err := s.parking.Enter(ctx, ev.Gate, ev.Vehicle, generic.ParsedTimestamp())
	if err != nil {
		return err
	}
	if s.tickets != nil {
		if err := s.tickets.SendTicket(ctx, ev.Gate, ticket); err != nil {
			s.log.Error("failed to send ticket to gate",
				zap.Int("gate", ev.Gate), zap.String("ticket_id", ticket.ID().String()), zap.Error(err))
		}
	}
	return nil
}

func (s *GateEventService) archive(ctx context.Context, generic domain.GenericGateMessage, payload json.RawMessage, status, notes string) {
	receivedAt := time.Now().UTC()
	if s.controllers != nil && generic.DeviceID != "" {
		err := s.controllers.Touch(ctx, domain.GateControllerSighting{
			ThingName:   generic.DeviceID,
			Topic:       generic.ReceivedMqttTopic,
			MessageType: generic.MessageType,
			Status:      status,
			SeenAt:      receivedAt,
		})
		if err != nil {
			s.log.Warn("failed to record gate controller", zap.String("device_id", generic.DeviceID), zap.Error(err))
		}
	}
	if s.msgLog == nil {
		return
	}
	err := s.msgLog.Create(ctx, &domain.GateMessageLog{
		ReceivedAt:      receivedAt,
		DeviceID:        generic.DeviceID,
		MqttTopic:       generic.ReceivedMqttTopic,
		MessageType:     generic.MessageType,
		Payload:         payload,
		ProcessedStatus: status,
		ProcessingNotes: notes,
	})
	if err != nil {
		s.log.Error("failed to archive gate message", zap.String("status", status), zap.Error(err))
	}
}
