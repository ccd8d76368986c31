package auth

import (
	"context"

	"github.com/singladno/marinaobuv-sub001/pkg/middleware"
	"google.golang.org/grpc/metadata"
)

// GetMerchantID returns the merchant the request acts for. The interceptor
// and HTTP middleware populate the context; raw gRPC metadata is the
// fallback for handlers registered without them.
func GetMerchantID(ctx context.Context) string {
	if id := middleware.MerchantID(ctx); id != "" {
		return id
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(middleware.MerchantMetadataKey); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
