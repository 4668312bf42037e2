package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrNoSales         = errors.New("no sales data available")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Credentials struct {
	Driver            string
	SQLitePath        string
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type NewOrderLine struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

type NewOrder struct {
	UserID          *int64
	FullName        string
	Email           string
	ShippingAddress string
	AmountPaid      decimal.Decimal
	Lines           []NewOrderLine
}

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

type ProductRepository interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)
}

// OrderRepository persists orders together with their lines. Every mutation
// also records an outbox event in the same transaction.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *NewOrder) (int64, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, id int64, update domain.OrderUpdate) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type SalesRepository interface {
	RevenueByProduct(ctx context.Context) ([]domain.ProductRevenue, error)
	HighestSelling(ctx context.Context) (*domain.BestSeller, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type RepoInterface interface {
	ProductRepository
	OrderRepository
	SalesRepository
	OutboxRepository
	RunMigrations(migrationsPath string) error
	Close() error
}
