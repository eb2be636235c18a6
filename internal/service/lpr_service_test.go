package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detection(text string, conf float32, kind types.TextTypes) types.TextDetection {
	return types.TextDetection{DetectedText: aws.String(text), Confidence: aws.Float32(conf), Type: kind}
}

func TestLPRService_PicksBestMatchingPlate(t *testing.T) {
	det := &mockDetector{DetectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput) (*rekognition.DetectTextOutput, error) {
		return &rekognition.DetectTextOutput{TextDetections: []types.TextDetection{
			detection("PARKING", 99, types.TextTypesLine),
			detection("a 001 aa", 80, types.TextTypesLine),
			detection("A001AA77", 91, types.TextTypesWord),
		}}, nil
	}}
	svc, err := NewLPRService(det, "", nil)
	require.NoError(t, err)

	plate, conf, err := svc.ProcessImageForLPR(context.Background(), []byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, "A001AA77", plate)
	assert.Equal(t, float32(91), conf)
}

func TestLPRService_NoPlate(t *testing.T) {
	det := &mockDetector{DetectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput) (*rekognition.DetectTextOutput, error) {
		return &rekognition.DetectTextOutput{TextDetections: []types.TextDetection{
			detection("EXIT", 99, types.TextTypesLine),
		}}, nil
	}}
	svc, err := NewLPRService(det, "", nil)
	require.NoError(t, err)

	_, _, err = svc.ProcessImageForLPR(context.Background(), nil)
	assert.ErrorIs(t, err, ErrPlateNotFound)
	assert.Contains(t, err.Error(), "EXIT")
}

func TestLPRService_Errors(t *testing.T) {
	_, err := NewLPRService(nil, "([", nil)
	assert.Error(t, err)

	svc, err := NewLPRService(nil, "", nil)
	require.NoError(t, err)
	_, _, err = svc.ProcessImageForLPR(context.Background(), nil)
	assert.Error(t, err)

	boom := errors.New("access denied")
	det := &mockDetector{DetectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput) (*rekognition.DetectTextOutput, error) {
		return nil, boom
	}}
	svc, err = NewLPRService(det, "", nil)
	require.NoError(t, err)
	_, _, err = svc.ProcessImageForLPR(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}
