package asr

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockTranscription = "I have three years of experience in React development. " +
	"I built a dashboard used by the operations team and reduced its load time by forty percent."

// MockConnector - мок-реализация ASR коннектора для тестирования
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error) {
	if len(audioData) == 0 {
		return "", ErrEmptyAudio
	}

	ctxzap.Info(ctx, "[MOCK] transcribing voice clip",
		zap.String("filename", filename),
		zap.Int("size", len(audioData)),
	)

	return mockTranscription, nil
}
