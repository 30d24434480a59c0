package services_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"pharmacy/internal/database"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
	"pharmacy/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	Exchange   string
	RoutingKey string
	Event      services.Event
}

// recordingPublisher captures everything published through a Notifier.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(exchange, routingKey string, body []byte) error {
	var ev services.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Exchange: exchange, RoutingKey: routingKey, Event: ev})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}

// eachSet runs fn against a private SQLite store and the in-memory store.
func eachSet(t *testing.T, fn func(t *testing.T, repos repositories.Set)) {
	t.Run("gorm", func(t *testing.T) {
		db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
		require.NoError(t, err)
		require.NoError(t, database.Migrate(db))
		fn(t, repositories.NewGORMSet(db))
	})
	t.Run("memory", func(t *testing.T) { fn(t, repositories.NewMockSet()) })
}

func seedProduct(t *testing.T, repos repositories.Set, name string, price int64, stock int, rx bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:                 name,
		Price:                decimal.NewFromInt(price),
		Stock:                stock,
		RequiresPrescription: rx,
		Category:             "general",
	}
	require.NoError(t, repos.Products.Create(product))
	return product
}

func stockOf(t *testing.T, repos repositories.Set, id string) int {
	t.Helper()
	product, err := repos.Products.GetByID(id)
	require.NoError(t, err)
	return product.Stock
}

func shippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   "Alice Doe",
		Phone:      "+91 98765 43210",
		Street:     "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
	}
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}
