package handler

import (
	"context"
	"net"
	"testing"

	"github.com/singladno/marinaobuv-sub001/internal/category"
	"github.com/singladno/marinaobuv-sub001/internal/category/dto"
	"github.com/singladno/marinaobuv-sub001/internal/category/repository"
	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/singladno/marinaobuv-sub001/internal/category/usecase"
	"github.com/singladno/marinaobuv-sub001/internal/model"
	"github.com/singladno/marinaobuv-sub001/pkg/database"
	"github.com/singladno/marinaobuv-sub001/pkg/i18n"
	"github.com/singladno/marinaobuv-sub001/pkg/logger"
	"github.com/singladno/marinaobuv-sub001/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const merchant = "m1"

type seeded struct {
	shoes, boots, bags *model.Category
}

func newUseCase(t *testing.T) (category.UseCase, seeded) {
	t.Helper()
	require.NoError(t, i18n.Init())
	ctx := context.Background()

	db, err := database.Open(ctx, &database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = database.ApplyMigrations(ctx, db)
	require.NoError(t, err)

	uc := usecase.NewCategoryUseCase(repository.NewSQLRepository(db), nil, nil, nil, logger.NewNop(),
		usecase.Options{ParentMode: tree.ParentsExcludeSubtree})

	var s seeded
	s.shoes, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{MerchantID: merchant, Name: "Shoes"})
	require.NoError(t, err)
	s.boots, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{MerchantID: merchant, Name: "Boots", ParentID: &s.shoes.ID})
	require.NoError(t, err)
	s.bags, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{MerchantID: merchant, Name: "Bags"})
	require.NoError(t, err)
	return uc, s
}

func newGRPCClient(t *testing.T, uc category.UseCase) *CategoryTreeClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.ContextInterceptor(),
		middleware.LoggingInterceptor(logger.NewNop()),
	))
	RegisterCategoryTreeServer(srv, NewCategoryTreeHandler(uc, logger.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewCategoryTreeClient(conn)
}

func merchantCtx() context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "x-merchant-id", merchant)
}

func TestGRPCGetTree(t *testing.T) {
	uc, s := newUseCase(t)
	client := newGRPCClient(t, uc)

	out, err := client.GetTree(merchantCtx(), "")
	require.NoError(t, err)
	nodes := out.GetFields()["nodes"].GetListValue().GetValues()
	require.Len(t, nodes, 2)
	assert.Equal(t, s.bags.ID, nodes[0].GetStructValue().GetFields()["id"].GetStringValue())
	assert.Equal(t, s.shoes.ID, nodes[1].GetStructValue().GetFields()["id"].GetStringValue())

	out, err = client.GetTree(merchantCtx(), "boo")
	require.NoError(t, err)
	nodes = out.GetFields()["nodes"].GetListValue().GetValues()
	require.Len(t, nodes, 1)
	children := nodes[0].GetStructValue().GetFields()["children"].GetListValue().GetValues()
	require.Len(t, children, 1)
	assert.Equal(t, "Boots", children[0].GetStructValue().GetFields()["name"].GetStringValue())
}

func TestGRPCFlattenAndParents(t *testing.T) {
	uc, s := newUseCase(t)
	client := newGRPCClient(t, uc)

	out, err := client.FlattenTree(merchantCtx(), s.shoes.ID)
	require.NoError(t, err)
	entries := out.GetFields()["entries"].GetListValue().GetValues()
	require.Len(t, entries, 1)
	assert.Equal(t, "bags", entries[0].GetStructValue().GetFields()["path"].GetStringValue())

	out, err = client.ValidParents(merchantCtx(), s.shoes.ID, "")
	require.NoError(t, err)
	assert.Len(t, out.GetFields()["categories"].GetListValue().GetValues(), 1)

	out, err = client.ValidParents(merchantCtx(), s.shoes.ID, "self")
	require.NoError(t, err)
	assert.Len(t, out.GetFields()["categories"].GetListValue().GetValues(), 2)

	_, err = client.ValidParents(merchantCtx(), s.shoes.ID, "everything")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCReconcileSelection(t *testing.T) {
	uc, s := newUseCase(t)
	client := newGRPCClient(t, uc)

	out, err := client.ReconcileSelection(merchantCtx(), s.boots.ID)
	require.NoError(t, err)
	assert.Equal(t, s.boots.ID, out.GetFields()["selected_id"].GetStringValue())

	out, err = client.ReconcileSelection(merchantCtx(), "gone")
	require.NoError(t, err)
	assert.Equal(t, s.bags.ID, out.GetFields()["selected_id"].GetStringValue())
}

func TestGRPCRequiresMerchant(t *testing.T) {
	uc, _ := newUseCase(t)
	client := newGRPCClient(t, uc)

	_, err := client.GetTree(context.Background(), "")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, codes.NotFound, classify(category.ErrCategoryNotFound).grpc)
	assert.Equal(t, codes.FailedPrecondition, classify(category.ErrCategoryCycle).grpc)
	assert.Equal(t, codes.AlreadyExists, classify(category.ErrSlugTaken).grpc)
	assert.Equal(t, codes.Internal, classify(assert.AnError).grpc)
}
