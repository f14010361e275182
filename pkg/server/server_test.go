package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDecorator struct {
	mock.Mock
}

func (m *mockDecorator) Decorate(ctx context.Context, alert domain.Alert) (domain.DecoratedAlert, error) {
	args := m.Called(ctx, alert)
	return args.Get(0).(domain.DecoratedAlert), args.Error(1)
}

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var v T
		err := json.Unmarshal(data, &v)
		return v, err
	}
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	decorator := new(mockDecorator)
	pinger := new(mockPinger)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Decorator: decorator,
			Pinger:    pinger,
			Logger:    logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:   "Health",
			method: http.MethodGet,
			path:   "/api/v1/health",
			setupMocks: func() {
				pinger.On("Ping", mock.Anything).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expected:       api.Health{Status: "ok"},
			parseResponse:  unmarshalResponse[api.Health](),
		},
		{
			name:   "CreateReport_NoChanges",
			method: http.MethodPost,
			path:   "/api/v1/reports",
			body:   `{"changeSet": {"Changes": []}, "checkov": [], "account": "1", "region": "eu-west-1"}`,
			setupMocks: func() {
			},
			expectedStatus: http.StatusOK,
			expected: api.ReportResponse{
				Modified: "| Resource | Type | Policy Violation | Policy ID | General Risk | Resource Risk | Policy Risk | Context |\n" +
					"| --- | --- | --- | --- | --- | --- | --- | --- |\n",
				Created: "| Resource | Type | Policy Violation | Policy ID |\n| --- | --- | --- | --- |\n",
			},
			parseResponse: unmarshalResponse[api.ReportResponse](),
		},
		{
			name:           "CreateReport_InvalidBody",
			method:         http.MethodPost,
			path:           "/api/v1/reports",
			body:           `not json`,
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			parseResponse:  unmarshalResponse[api.ErrorResponse](),
		},
		{
			name:           "UnknownRoute",
			method:         http.MethodGet,
			path:           "/api/v1/workspaces",
			setupMocks:     func() {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks()

			req, err := http.NewRequest(tt.method, testServer.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			if tt.parseResponse == nil {
				return
			}
			actual, err := tt.parseResponse(body)
			require.NoError(t, err)
			if tt.expected != nil {
				assert.Equal(t, tt.expected, actual)
			}
		})
	}

	decorator.AssertNotCalled(t, "Decorate", mock.Anything, mock.Anything)
	pinger.AssertExpectations(t)
}
