package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	args := m.Called(ctx, routingKey, event, headers)
	return args.Error(0)
}

func TestPublishEventWithoutPublisher(t *testing.T) {
	SetPublisher(nil)
	assert.NoError(t, PublishEvent(context.Background(), RoutingKeyWSEvents, EventEnvelope{}, nil))
}

func TestPublishEventCountsErrors(t *testing.T) {
	pub := new(publisherMock)
	SetPublisher(pub)
	t.Cleanup(func() { SetPublisher(nil) })

	before := testutil.ToFloat64(amqpPublishErrorsTotal)
	pub.On("Publish", mock.Anything, RoutingKeyWSEvents, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	err := PublishEvent(context.Background(), RoutingKeyWSEvents, EventEnvelope{EventName: "ws_connect"}, BuildHeaders("r1", ""))
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(amqpPublishErrorsTotal))
	pub.AssertExpectations(t)
}

func TestBuildHeadersSkipsEmpty(t *testing.T) {
	assert.Equal(t, map[string]string{"x-request-id": "r1"}, BuildHeaders("r1", ""))
	assert.Equal(t, map[string]string{"trace_id": "t1"}, BuildHeaders("", "t1"))
	assert.Empty(t, BuildHeaders("", ""))
}

func TestClientInfoFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	req.Header.Set("X-Device-Id", "dev-1")
	req.Header.Set("X-Request-Id", "req-1")
	req.Header.Set("User-Agent", "tester")

	info := ClientInfoFromRequest(req)
	assert.Equal(t, ClientInfo{DeviceID: "dev-1", IP: "10.0.0.9", RequestID: "req-1", UserAgent: "tester"}, info)

	req.Header.Set("X-Forwarded-For", " 1.2.3.4 , 10.0.0.1")
	assert.Equal(t, "1.2.3.4", IPFromRequest(req))
}

func TestDispatchAndStateMetrics(t *testing.T) {
	before := testutil.ToFloat64(dispatchEventsTotal.WithLabelValues("room:join", "ok"))
	IncDispatchEvent("room:join", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(dispatchEventsTotal.WithLabelValues("room:join", "ok")))

	SetActiveRooms(3)
	SetActiveSessions(7)
	assert.Equal(t, float64(3), testutil.ToFloat64(activeRooms))
	assert.Equal(t, float64(7), testutil.ToFloat64(activeSessions))

	images := testutil.ToFloat64(chatMessagesTotal.WithLabelValues("image"))
	IncChatMessage(true)
	assert.Equal(t, images+1, testutil.ToFloat64(chatMessagesTotal.WithLabelValues("image")))
}

func TestSplitFullMethod(t *testing.T) {
	service, method := splitFullMethod("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", service)
	assert.Equal(t, "Check", method)

	service, method = splitFullMethod("bogus")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "unknown", method)
}
