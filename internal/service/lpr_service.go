package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"
)

// DefaultPlatePattern accepts "A001AA"-style plates with an optional region
// suffix and "29A-12345"-style plates.
const DefaultPlatePattern = `^([A-Z][0-9]{3}[A-Z]{2}([0-9]{2,3})?|[0-9]{2}[A-Z]{1,2}-?[0-9]{3,5})$`

var ErrPlateNotFound = errors.New("no licence plate recognised in image")

// TextDetector is the Rekognition call the LPR service needs.
type TextDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

type LPRService struct {
	detector TextDetector
	plate    *regexp.Regexp
	log      *zap.Logger
}

func NewLPRService(detector TextDetector, platePattern string, log *zap.Logger) (*LPRService, error) {
	if platePattern == "" {
		platePattern = DefaultPlatePattern
	}
	re, err := regexp.Compile(platePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid plate pattern: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LPRService{detector: detector, plate: re, log: log}, nil
}

// ProcessImageForLPR returns the plate with the highest confidence among the
// detected text lines and words that match the plate pattern.
func (s *LPRService) ProcessImageForLPR(ctx context.Context, imageBytes []byte) (string, float32, error) {
	if s.detector == nil {
		return "", 0, errors.New("rekognition client is not configured")
	}

	result, err := s.detector.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	})
	if err != nil {
		s.log.Error("rekognition DetectText failed", zap.Error(err))
		return "", 0, fmt.Errorf("rekognition: %w", err)
	}

	var (
		detected   []string
		best       string
		confidence float32
	)
	for _, td := range result.TextDetections {
		if td.Type != types.TextTypesLine && td.Type != types.TextTypesWord {
			continue
		}
		if td.DetectedText == nil || td.Confidence == nil {
			continue
		}
		txt := normalisePlate(*td.DetectedText)
		detected = append(detected, txt)
		if s.plate.MatchString(txt) && *td.Confidence > confidence {
			best, confidence = txt, *td.Confidence
		}
	}

	if best == "" {
		s.log.Info("no plate matched", zap.Strings("detected", detected))
		return "", 0, fmt.Errorf("%w (text: %s)", ErrPlateNotFound, strings.Join(detected, ", "))
	}
	s.log.Info("plate recognised", zap.String("plate", best), zap.Float32("confidence", confidence))
	return best, confidence, nil
}

func normalisePlate(s string) string {
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	return strings.ReplaceAll(s, ".", "")
}
