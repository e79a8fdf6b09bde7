package service

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

type mockMatrixAdminStore struct {
	mockMatrixStore
	replaced [][]entity.MatrixTier
}

func (m *mockMatrixAdminStore) ReplaceAll(_ *sql.Tx, tiers []entity.MatrixTier) error {
	m.tiers = append([]entity.MatrixTier(nil), tiers...)
	m.replaced = append(m.replaced, m.tiers)
	return nil
}

func TestMatrixService_Evaluate(t *testing.T) {
	store := &mockMatrixAdminStore{mockMatrixStore: mockMatrixStore{tiers: []entity.MatrixTier{
		usdTier(0, 500, entity.RoleManager),
		{
			ID:                    "m2",
			MinAmount:             decimal.NewFromInt(501),
			Currency:              "USD",
			RequiredApproverRoles: []entity.Role{entity.RoleManager, entity.RoleFinance},
		},
	}}}
	svc := NewMatrixService(&mockTxRunner{}, store, &mockUserStore{users: defaultDirectory()}, zap.NewNop())

	eval, err := svc.Evaluate(decimal.NewFromInt(300), "USD", []string{"u2"})
	require.NoError(t, err)
	assert.True(t, eval.Satisfied)
	assert.Equal(t, []entity.Role{entity.RoleManager}, eval.RequiredRoles)
	assert.Empty(t, eval.MissingRoles)

	eval, err = svc.Evaluate(decimal.NewFromInt(900), "USD", []string{"u2"})
	require.NoError(t, err)
	assert.False(t, eval.Satisfied)
	assert.Equal(t, []entity.Role{entity.RoleFinance}, eval.MissingRoles)
}

func TestMatrixService_Replace(t *testing.T) {
	store := &mockMatrixAdminStore{}
	tx := &mockTxRunner{}
	svc := NewMatrixService(tx, store, &mockUserStore{}, zap.NewNop())

	tiers, err := svc.Replace([]entity.MatrixTier{
		{MinAmount: decimal.Zero, Currency: "USD", RequiredApproverRoles: []entity.Role{entity.RoleManager}},
	})
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.NotEmpty(t, tiers[0].ID, "new tier gets an id")
	assert.Equal(t, 1, tx.calls)
	require.Len(t, store.replaced, 1)
}

func TestMatrixService_ReplaceValidation(t *testing.T) {
	svc := NewMatrixService(&mockTxRunner{}, &mockMatrixAdminStore{}, &mockUserStore{}, zap.NewNop())

	tests := []struct {
		name string
		tier entity.MatrixTier
	}{
		{
			name: "missing currency",
			tier: entity.MatrixTier{MinAmount: decimal.Zero, RequiredApproverRoles: []entity.Role{entity.RoleManager}},
		},
		{
			name: "negative min",
			tier: entity.MatrixTier{MinAmount: decimal.NewFromInt(-1), Currency: "USD"},
		},
		{
			name: "max below min",
			tier: entity.MatrixTier{
				MinAmount: decimal.NewFromInt(100),
				MaxAmount: decimal.NullDecimal{Decimal: decimal.NewFromInt(50), Valid: true},
				Currency:  "USD",
			},
		},
		{
			name: "admin as required role",
			tier: entity.MatrixTier{MinAmount: decimal.Zero, Currency: "USD", RequiredApproverRoles: []entity.Role{entity.RoleAdmin}},
		},
		{
			name: "unknown role",
			tier: entity.MatrixTier{MinAmount: decimal.Zero, Currency: "USD", RequiredApproverRoles: []entity.Role{"Wizard"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Replace([]entity.MatrixTier{tt.tier})
			assert.Error(t, err)
		})
	}
}

func TestDirectoryService_SaveUser(t *testing.T) {
	users := &mockUserAdminStore{}
	svc := NewDirectoryService(users, &mockCategoryStore{}, zap.NewNop())

	saved, err := svc.SaveUser(entity.User{Name: "New Hire", Email: "n@financestream.io", Role: entity.RoleEmployee})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	_, err = svc.SaveUser(entity.User{Name: "Bad", Role: "Wizard"})
	assert.Error(t, err)
}

type mockUserAdminStore struct {
	mockUserStore
}

func (m *mockUserAdminStore) Upsert(user *entity.User) error {
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserAdminStore) Delete(id string) error {
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
