package handler

import (
	"errors"
	"net/http"

	"github.com/singladno/marinaobuv-sub001/internal/category"
	"google.golang.org/grpc/codes"
)

// errorKind is how a domain error surfaces on both transports.
type errorKind struct {
	grpc      codes.Code
	http      int
	messageID string
}

var errorKinds = []struct {
	err  error
	kind errorKind
}{
	{category.ErrCategoryNotFound, errorKind{codes.NotFound, http.StatusNotFound, "category.not_found"}},
	{category.ErrCategoryCycle, errorKind{codes.FailedPrecondition, http.StatusConflict, "category.cycle"}},
	{category.ErrInvalidParent, errorKind{codes.InvalidArgument, http.StatusUnprocessableEntity, "category.invalid_parent"}},
	{category.ErrNameRequired, errorKind{codes.InvalidArgument, http.StatusUnprocessableEntity, "category.name_required"}},
	{category.ErrInvalidSlug, errorKind{codes.InvalidArgument, http.StatusUnprocessableEntity, "category.invalid_slug"}},
	{category.ErrSlugTaken, errorKind{codes.AlreadyExists, http.StatusConflict, "category.slug_taken"}},
	{category.ErrIconNotAllowed, errorKind{codes.InvalidArgument, http.StatusUnprocessableEntity, "category.icon_not_allowed"}},
	{category.ErrMerchantRequired, errorKind{codes.Unauthenticated, http.StatusUnauthorized, "request.merchant_required"}},
}

var internalKind = errorKind{codes.Internal, http.StatusInternalServerError, "internal"}

func classify(err error) errorKind {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return internalKind
}
