package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/domain"
	db "github.com/Takamichi23/Nike-microservice/store-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.Repository {
	// Use in-memory database for tests
	repo, err := db.NewSQLiteRepository(":memory:")
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations("./migrations"))
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func int64Ptr(v int64) *int64 { return &v }

func sampleOrder(userID *int64) *db.NewOrder {
	return &db.NewOrder{
		UserID:          userID,
		FullName:        "Jane Doe",
		Email:           "jane@example.com",
		ShippingAddress: "1 Main St\n\nSpringfield\nIL\n62701\nUS",
		AmountPaid:      decimal.RequireFromString("372.00"),
		Lines: []db.NewOrderLine{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("130.00")},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("112.00")},
		},
	}
}

func TestGetAllProducts_Returns5AfterMigrations(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 5)
	assert.Equal(t, int64(1), products[0].ID)
}

func TestGetAllProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetAllProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetProduct_ReturnsProduct(t *testing.T) {
	repo := setupTestDB(t)

	product, err := repo.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Pegasus 41", product.Name)
	assert.True(t, product.IsSale)
	assert.True(t, product.SalePrice.Equal(decimal.RequireFromString("112")))
	assert.True(t, product.UnitPrice().Equal(decimal.RequireFromString("112")))
	require.NotNil(t, product.CategoryID)
	assert.Equal(t, int64(1), *product.CategoryID)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, db.ErrProductNotFound)
}

func TestGetProductsByIDs_SkipsUnknownIDs(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.GetProductsByIDs(context.Background(), []int64{3, 999, 1})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(3), products[1].ID)
}

func TestGetProductsByIDs_Empty(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.GetProductsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateOrder_PersistsOrderAndLines(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.CreateOrder(ctx, sampleOrder(int64Ptr(7)))
	require.NoError(t, err)
	assert.Positive(t, id)

	order, err := repo.GetOrderByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", order.FullName)
	require.NotNil(t, order.UserID)
	assert.Equal(t, int64(7), *order.UserID)
	assert.True(t, order.AmountPaid.Equal(decimal.RequireFromString("372")))
	assert.False(t, order.Shipped)
	assert.Nil(t, order.DateShipped)
	assert.WithinDuration(t, time.Now(), order.DateOrdered, time.Minute)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, int64(1), order.Lines[0].ProductID)
	assert.Equal(t, 2, order.Lines[0].Quantity)
	require.NotNil(t, order.Lines[0].UserID)
	assert.Equal(t, int64(7), *order.Lines[0].UserID)
	assert.True(t, order.Lines[1].Price.Equal(decimal.RequireFromString("112")))
}

func TestCreateOrder_GuestCheckout(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)

	order, err := repo.GetOrderByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
	assert.Nil(t, order.Lines[0].UserID)
}

func TestCreateOrder_WritesOutboxEvent(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.CreateOrder(ctx, sampleOrder(int64Ptr(7)))
	require.NoError(t, err)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, db.EventOrderCreated, events[0].EventType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.EqualValues(t, id, payload["order_id"])
}

func TestCreateOrder_CancelledContextLeavesNothing(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.Error(t, err)

	orders, err := repo.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetOrderByID(context.Background(), 42)
	assert.ErrorIs(t, err, db.ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)
	second, err := repo.CreateOrder(ctx, sampleOrder(int64Ptr(3)))
	require.NoError(t, err)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first, orders[0].ID)
	assert.Equal(t, second, orders[1].ID)
}

func TestUpdateOrder_ShippedStampsDate(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)

	shipped := true
	order, err := repo.UpdateOrder(ctx, id, domain.OrderUpdate{Shipped: &shipped})
	require.NoError(t, err)
	assert.True(t, order.Shipped)
	require.NotNil(t, order.DateShipped)
	assert.WithinDuration(t, time.Now(), *order.DateShipped, time.Minute)
}

func TestUpdateOrder_LineOverrides(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)

	qty := 5
	price := decimal.RequireFromString("99.50")
	order, err := repo.UpdateOrder(ctx, id, domain.OrderUpdate{
		Lines: []domain.LineOverride{
			{ProductID: 1, Quantity: &qty},
			{ProductID: 2, Price: &price},
			{ProductID: 4, Quantity: &qty}, // not part of the order
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 5, order.Lines[0].Quantity)
	assert.True(t, order.Lines[0].Price.Equal(decimal.RequireFromString("130")))
	assert.Equal(t, 1, order.Lines[1].Quantity)
	assert.True(t, order.Lines[1].Price.Equal(price))
	assert.False(t, order.Shipped)
}

func TestUpdateOrder_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	shipped := true
	_, err := repo.UpdateOrder(context.Background(), 42, domain.OrderUpdate{Shipped: &shipped})
	assert.ErrorIs(t, err, db.ErrOrderNotFound)
}

func TestDeleteOrder_RemovesLines(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteOrder(ctx, id))

	_, err = repo.GetOrderByID(ctx, id)
	assert.ErrorIs(t, err, db.ErrOrderNotFound)

	// no lines left behind to count towards sales
	_, err = repo.HighestSelling(ctx)
	assert.ErrorIs(t, err, db.ErrNoSales)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.DeleteOrder(context.Background(), 42)
	assert.ErrorIs(t, err, db.ErrOrderNotFound)
}

func TestRevenueByProduct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)
	_, err = repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)

	revenue, err := repo.RevenueByProduct(ctx)
	require.NoError(t, err)
	require.Len(t, revenue, 2)
	assert.Equal(t, int64(1), revenue[0].ProductID)
	assert.InDelta(t, 520.0, revenue[0].TotalRevenue, 0.001)
	assert.Equal(t, int64(2), revenue[1].ProductID)
	assert.InDelta(t, 224.0, revenue[1].TotalRevenue, 0.001)
}

func TestRevenueByProduct_NoSales(t *testing.T) {
	repo := setupTestDB(t)

	revenue, err := repo.RevenueByProduct(context.Background())
	require.NoError(t, err)
	assert.Empty(t, revenue)
}

func TestHighestSelling(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)

	best, err := repo.HighestSelling(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), best.ProductID)
	assert.Equal(t, "Air Max 90", best.ProductName)
	assert.Equal(t, 2, best.TotalQuantity)
	assert.InDelta(t, 260.0, best.TotalRevenue, 0.001)
}

func TestHighestSelling_NoSales(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.HighestSelling(context.Background())
	assert.ErrorIs(t, err, db.ErrNoSales)
}

func TestMarkEventAsProcessed(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.CreateOrder(ctx, sampleOrder(nil))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteOrder(ctx, id))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, db.EventOrderCreated, events[0].EventType)
	assert.Equal(t, db.EventOrderDeleted, events[1].EventType)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	remaining, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, events[1].ID, remaining[0].ID)
}
