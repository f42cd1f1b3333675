package mocks

import (
	"context"

	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/stretchr/testify/mock"
)

// MockPredictor is a mock implementation of prediction.Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, input itinerary.Input) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
