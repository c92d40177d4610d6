package accounting_test

import (
	"testing"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalSide(t *testing.T) {
	tests := []struct {
		ledgerType domain.LedgerType
		want       domain.EntryDirection
	}{
		{domain.Asset, domain.Debit},
		{domain.Expense, domain.Debit},
		{domain.Liability, domain.Credit},
		{domain.Income, domain.Credit},
		{domain.Equity, domain.Credit},
	}
	for _, tt := range tests {
		t.Run(string(tt.ledgerType), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalSide(tt.ledgerType))
		})
	}
}

func TestCalculateSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(100)
	tests := []struct {
		name       string
		direction  domain.EntryDirection
		ledgerType domain.LedgerType
		want       decimal.Decimal
	}{
		{"debit to asset increases", domain.Debit, domain.Asset, amount},
		{"credit to asset decreases", domain.Credit, domain.Asset, amount.Neg()},
		{"debit to expense increases", domain.Debit, domain.Expense, amount},
		{"credit to liability increases", domain.Credit, domain.Liability, amount},
		{"debit to liability decreases", domain.Debit, domain.Liability, amount.Neg()},
		{"credit to income increases", domain.Credit, domain.Income, amount},
		{"debit to income decreases", domain.Debit, domain.Income, amount.Neg()},
		{"credit to equity increases", domain.Credit, domain.Equity, amount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := domain.Entry{LedgerID: "ledger-1", Direction: tt.direction, Amount: amount}
			got, err := accounting.CalculateSignedAmount(entry, tt.ledgerType)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestCalculateSignedAmount_UnknownType(t *testing.T) {
	entry := domain.Entry{LedgerID: "ledger-1", Direction: domain.Debit, Amount: decimal.NewFromInt(10)}
	_, err := accounting.CalculateSignedAmount(entry, domain.LedgerType("BOGUS"))
	assert.Error(t, err)
}

func TestValidateVoucherEntries(t *testing.T) {
	debit := func(amount int64) domain.Entry {
		return domain.Entry{LedgerID: "a", Direction: domain.Debit, Amount: decimal.NewFromInt(amount)}
	}
	credit := func(amount int64) domain.Entry {
		return domain.Entry{LedgerID: "b", Direction: domain.Credit, Amount: decimal.NewFromInt(amount)}
	}

	t.Run("balanced pair passes", func(t *testing.T) {
		assert.NoError(t, accounting.ValidateVoucherEntries([]domain.Entry{debit(200), credit(200)}))
	})

	t.Run("fewer than two entries rejected", func(t *testing.T) {
		err := accounting.ValidateVoucherEntries([]domain.Entry{debit(200)})
		assert.ErrorContains(t, err, "at least two entries")
	})

	t.Run("unbalanced rejected", func(t *testing.T) {
		err := accounting.ValidateVoucherEntries([]domain.Entry{debit(150), credit(100)})
		assert.ErrorContains(t, err, "do not balance")
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		err := accounting.ValidateVoucherEntries([]domain.Entry{debit(0), credit(0)})
		assert.ErrorContains(t, err, "must be positive")
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		entries := []domain.Entry{
			{LedgerID: "a", Direction: domain.Debit, Amount: decimal.NewFromInt(-50)},
			{LedgerID: "b", Direction: domain.Credit, Amount: decimal.NewFromInt(-50)},
		}
		assert.ErrorContains(t, accounting.ValidateVoucherEntries(entries), "must be positive")
	})

	t.Run("bad direction rejected", func(t *testing.T) {
		entries := []domain.Entry{
			{LedgerID: "a", Direction: domain.EntryDirection("SIDEWAYS"), Amount: decimal.NewFromInt(50)},
			credit(50),
		}
		assert.ErrorContains(t, accounting.ValidateVoucherEntries(entries), "DEBIT or CREDIT")
	})

	t.Run("three entry journal balances", func(t *testing.T) {
		entries := []domain.Entry{
			{LedgerID: "a", Direction: domain.Debit, Amount: decimal.NewFromInt(300)},
			{LedgerID: "c", Direction: domain.Debit, Amount: decimal.NewFromInt(50)},
			{LedgerID: "b", Direction: domain.Credit, Amount: decimal.NewFromInt(350)},
		}
		assert.NoError(t, accounting.ValidateVoucherEntries(entries))
	})
}

func TestSignedOpeningBalance(t *testing.T) {
	tests := []struct {
		name   string
		ledger domain.Ledger
		want   decimal.Decimal
	}{
		{
			name:   "asset opened on debit side is positive",
			ledger: domain.Ledger{Type: domain.Asset, OpeningBalance: decimal.NewFromInt(1000), OpeningBalanceType: domain.Debit},
			want:   decimal.NewFromInt(1000),
		},
		{
			name:   "asset opened on credit side is negative",
			ledger: domain.Ledger{Type: domain.Asset, OpeningBalance: decimal.NewFromInt(1000), OpeningBalanceType: domain.Credit},
			want:   decimal.NewFromInt(-1000),
		},
		{
			name:   "income opened on credit side is positive",
			ledger: domain.Ledger{Type: domain.Income, OpeningBalance: decimal.NewFromInt(250), OpeningBalanceType: domain.Credit},
			want:   decimal.NewFromInt(250),
		},
		{
			name:   "zero opening stays zero either side",
			ledger: domain.Ledger{Type: domain.Liability, OpeningBalance: decimal.Zero, OpeningBalanceType: domain.Debit},
			want:   decimal.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ledger.SignedOpeningBalance()
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}
