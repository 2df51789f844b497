package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"roomchat/internal/observability"
	"roomchat/internal/telemetry"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	args := m.Called(ctx, routingKey, event, headers)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ observability.Publisher = (*PublisherMock)(nil)
var _ telemetry.Publisher = (*PublisherMock)(nil)
