package auth

import (
	"context"
	"testing"

	"github.com/singladno/marinaobuv-sub001/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestGetMerchantID(t *testing.T) {
	assert.Equal(t, "", GetMerchantID(context.Background()))
	assert.Equal(t, "m1", GetMerchantID(middleware.WithMerchantID(context.Background(), "m1")))

	md := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-merchant-id", "m2"))
	assert.Equal(t, "m2", GetMerchantID(md))
}
