package iot

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"github.com/greenvvay/Parking/internal/service"
)

// SQSAPI is the subset of the SQS client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// MessageHandler is implemented by service.GateEventService.
type MessageHandler interface {
	HandleGateMessage(ctx context.Context, body string) error
}

// SQSConsumer long-polls the gate event queue that the IoT rule feeds.
type SQSConsumer struct {
	client     SQSAPI
	queueURL   string
	handler    MessageHandler
	log        *zap.Logger
	retryDelay time.Duration
	waitTime   int32
}

func NewSQSConsumer(client SQSAPI, queueURL string, handler MessageHandler, log *zap.Logger) *SQSConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQSConsumer{
		client:     client,
		queueURL:   queueURL,
		handler:    handler,
		log:        log.Named("sqs"),
		retryDelay: 5 * time.Second,
		waitTime:   20,
	}
}

// Start blocks until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context) {
	c.log.Info("consumer started", zap.String("queue_url", c.queueURL))
	for {
		if ctx.Err() != nil {
			c.log.Info("consumer stopped")
			return
		}

		result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     c.waitTime,
			VisibilityTimeout:   60,
		})
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped")
				return
			}
			c.log.Error("receive failed", zap.Error(err))
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				c.log.Info("consumer stopped while waiting for retry")
				return
			}
			continue
		}

		for _, message := range result.Messages {
			c.process(ctx, message.Body, message.MessageId, message.ReceiptHandle)
		}
	}
}

func (c *SQSConsumer) process(ctx context.Context, body, messageID, receiptHandle *string) {
	if body == nil {
		c.log.Warn("empty message body, deleting", zap.String("message_id", aws.ToString(messageID)))
		c.deleteMessage(ctx, receiptHandle)
		return
	}

	err := c.handler.HandleGateMessage(ctx, *body)
	switch {
	case err == nil:
		c.deleteMessage(ctx, receiptHandle)
	case errors.Is(err, service.ErrMalformedMessage):
		c.log.Warn("dropping malformed message", zap.String("message_id", aws.ToString(messageID)), zap.Error(err))
		c.deleteMessage(ctx, receiptHandle)
	default:
		c.log.Error("message processing failed, will be redelivered after visibility timeout",
			zap.String("message_id", aws.ToString(messageID)), zap.Error(err))
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		c.log.Warn("missing receipt handle, cannot delete message")
		return
	}
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		c.log.Error("delete failed", zap.Error(err))
	}
}
