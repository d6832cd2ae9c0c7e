package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
)

func (q *queries) CreateCustomer(ctx context.Context, c *models.Customer) error {
	defer q.lock()()
	c.ID = q.st.id()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	q.st.customers[c.ID] = *c
	return nil
}

func (q *queries) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	defer q.lock()()
	current, ok := q.st.customers[c.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	updated := *c
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = now()
	q.st.customers[c.ID] = updated
	c.UpdatedAt = updated.UpdatedAt
	return nil
}

func (q *queries) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	defer q.lock()()
	c, ok := q.st.customers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (q *queries) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	defer q.lock()()
	for _, id := range sortedKeys(q.st.customers) {
		if c := q.st.customers[id]; c.Phone == phone {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (q *queries) ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	defer q.lock()()
	var out []*models.Customer
	for _, c := range q.st.customers {
		if f.Search != "" && !contains(c.Name, f.Search) && !strings.HasPrefix(c.Phone, f.Search) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return limit(out, f.Limit), nil
}

func (q *queries) CreateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	defer q.lock()()
	for _, existing := range q.st.salesPersons {
		if existing.Name == sp.Name {
			return fmt.Errorf("sales person %q: %w", sp.Name, repositories.ErrDuplicate)
		}
	}
	sp.ID = q.st.id()
	sp.CreatedAt = now()
	q.st.salesPersons[sp.ID] = *sp
	return nil
}

func (q *queries) UpdateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	defer q.lock()()
	current, ok := q.st.salesPersons[sp.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, existing := range q.st.salesPersons {
		if id != sp.ID && existing.Name == sp.Name {
			return fmt.Errorf("sales person %q: %w", sp.Name, repositories.ErrDuplicate)
		}
	}
	updated := *sp
	updated.CreatedAt = current.CreatedAt
	q.st.salesPersons[sp.ID] = updated
	return nil
}

func (q *queries) GetSalesPerson(ctx context.Context, id int) (*models.SalesPerson, error) {
	defer q.lock()()
	sp, ok := q.st.salesPersons[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &sp, nil
}

func (q *queries) GetSalesPersonByName(ctx context.Context, name string) (*models.SalesPerson, error) {
	defer q.lock()()
	for _, sp := range q.st.salesPersons {
		if sp.Name == name {
			sp := sp
			return &sp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (q *queries) ListSalesPersons(ctx context.Context, activeOnly bool) ([]*models.SalesPerson, error) {
	defer q.lock()()
	var out []*models.SalesPerson
	for _, sp := range q.st.salesPersons {
		if activeOnly && !sp.IsActive {
			continue
		}
		sp := sp
		out = append(out, &sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (q *queries) GetCompanySettings(ctx context.Context) (*models.CompanySettings, error) {
	defer q.lock()()
	s := q.st.settings
	return &s, nil
}

func (q *queries) UpdateCompanySettings(ctx context.Context, s *models.CompanySettings) error {
	defer q.lock()()
	s.UpdatedAt = now()
	q.st.settings = *s
	return nil
}

func (q *queries) CreateUser(ctx context.Context, u *models.User) error {
	defer q.lock()()
	for _, existing := range q.st.users {
		if existing.Username == u.Username {
			return fmt.Errorf("user %q: %w", u.Username, repositories.ErrDuplicate)
		}
	}
	u.ID = q.st.id()
	u.CreatedAt = now()
	q.st.users[u.ID] = *u
	return nil
}

func (q *queries) GetUser(ctx context.Context, id int) (*models.User, error) {
	defer q.lock()()
	u, ok := q.st.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	defer q.lock()()
	for _, u := range q.st.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (q *queries) CountUsers(ctx context.Context) (int, error) {
	defer q.lock()()
	return len(q.st.users), nil
}

func (q *queries) TouchLastLogin(ctx context.Context, id int, at time.Time) error {
	defer q.lock()()
	u, ok := q.st.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.LastLogin = &at
	q.st.users[id] = u
	return nil
}
