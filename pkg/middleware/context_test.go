package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/singladno/marinaobuv-sub001/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestContextInterceptor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(MerchantMetadataKey, "m1"))
	var got string
	_, err := ContextInterceptor()(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		got = MerchantID(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", got)
}

func TestLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	intercept := LoggingInterceptor(logger.Wrap(zap.New(core)))
	info := &grpc.UnaryServerInfo{FullMethod: "/catalog.v1.CategoryTreeService/GetTree"}

	_, err := intercept(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	assert.Error(t, err)
	entries := logs.FilterMessage("grpc call failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "NotFound", entries[0].ContextMap()["code"])
}

func TestHTTPMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var got string
	h := RequestLogger(logger.Wrap(zap.New(core)))(MerchantContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = MerchantID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set(MerchantHeader, "m1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "m1", got)
	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusTeapot, entries[0].ContextMap()["status"])
}
