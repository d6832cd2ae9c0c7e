package services

import (
	"testing"

	"billing-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesPersons(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSalesPersonService(env.store)

	ravi, err := svc.CreateSalesPerson(env.ctx, &models.SalesPersonRequest{Name: "Ravi"})
	require.NoError(t, err)
	assert.True(t, ravi.IsActive)

	_, err = svc.CreateSalesPerson(env.ctx, &models.SalesPersonRequest{Name: "Ravi"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	off := false
	ravi, err = svc.UpdateSalesPerson(env.ctx, ravi.ID, &models.SalesPersonRequest{Name: "Ravi Kumar", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, ravi.IsActive)

	active, err := svc.ListSalesPersons(env.ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.CounterSaleName, active[0].Name)

	all, err := svc.ListSalesPersons(env.ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCounterSaleIsFixed(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSalesPersonService(env.store)
	counter, err := env.store.GetSalesPersonByName(env.ctx, models.CounterSaleName)
	require.NoError(t, err)

	off := false
	_, err = svc.UpdateSalesPerson(env.ctx, counter.ID, &models.SalesPersonRequest{Name: models.CounterSaleName, IsActive: &off})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateSalesPerson(env.ctx, counter.ID, &models.SalesPersonRequest{Name: "Front Desk"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateSalesPerson(env.ctx, counter.ID, &models.SalesPersonRequest{Name: models.CounterSaleName, Phone: "9830000000"})
	require.NoError(t, err)
	assert.Equal(t, "9830000000", updated.Phone)

	_, err = svc.UpdateSalesPerson(env.ctx, 999, &models.SalesPersonRequest{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrSalesPersonNotFound)
}
