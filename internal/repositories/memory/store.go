// Package memory is an in-process repositories.Store. Transactions work on a
// copy of the data that replaces the live copy only when fn succeeds, so a
// failed transaction leaves nothing behind, matching the PostgreSQL store.
package memory

import (
	"context"
	"sync"

	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

type state struct {
	products     map[int]models.Product
	batches      map[int]models.ProductBatch
	customers    map[int]models.Customer
	salesPersons map[int]models.SalesPerson
	bills        map[int]models.Bill
	billItems    map[int]models.BillItem
	billReturns  map[int]models.BillReturn
	history      []models.StockHistory
	settings     models.CompanySettings
	users        map[int]models.User
	nextID       int
}

func newState() *state {
	return &state{
		products:     map[int]models.Product{},
		batches:      map[int]models.ProductBatch{},
		customers:    map[int]models.Customer{},
		salesPersons: map[int]models.SalesPerson{},
		bills:        map[int]models.Bill{},
		billItems:    map[int]models.BillItem{},
		billReturns:  map[int]models.BillReturn{},
		users:        map[int]models.User{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:     make(map[int]models.Product, len(s.products)),
		batches:      make(map[int]models.ProductBatch, len(s.batches)),
		customers:    make(map[int]models.Customer, len(s.customers)),
		salesPersons: make(map[int]models.SalesPerson, len(s.salesPersons)),
		bills:        make(map[int]models.Bill, len(s.bills)),
		billItems:    make(map[int]models.BillItem, len(s.billItems)),
		billReturns:  make(map[int]models.BillReturn, len(s.billReturns)),
		history:      append([]models.StockHistory(nil), s.history...),
		settings:     s.settings,
		users:        make(map[int]models.User, len(s.users)),
		nextID:       s.nextID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.batches {
		c.batches[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.salesPersons {
		c.salesPersons[k] = v
	}
	for k, v := range s.bills {
		c.bills[k] = v
	}
	for k, v := range s.billItems {
		c.billItems[k] = v
	}
	for k, v := range s.billReturns {
		c.billReturns[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *state) id() int {
	s.nextID++
	return s.nextID
}

// Store implements repositories.Store.
type Store struct {
	*queries
	mu   sync.Mutex
	data *state
}

var _ repositories.Store = (*Store)(nil)

// New returns an empty store seeded like a freshly migrated database: the
// default settings row and the Counter Sale sales person.
func New() *Store {
	s := &Store{data: newState()}
	s.queries = &queries{st: s.data, mu: &s.mu}

	s.data.settings = models.CompanySettings{
		CompanyName:   "My Company",
		StateName:     "West Bengal",
		StateCode:     "19",
		InvoicePrefix: "NH",
		UpdatedAt:     now(),
	}
	id := s.data.id()
	s.data.salesPersons[id] = models.SalesPerson{
		ID:        id,
		Name:      models.CounterSaleName,
		IsActive:  true,
		CreatedAt: now(),
	}
	return s
}

func (s *Store) InTx(ctx context.Context, fn func(q repositories.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&queries{st: work}); err != nil {
		return err
	}
	*s.data = *work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// queries holds the per-entity methods. mu is nil inside a transaction,
// where the Store lock is already held.
type queries struct {
	st *state
	mu *sync.Mutex
}

func (q *queries) lock() func() {
	if q.mu == nil {
		return func() {}
	}
	q.mu.Lock()
	return q.mu.Unlock
}
