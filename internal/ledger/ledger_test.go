package ledger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/domain"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(zerolog.Nop())
}

func candidate(amount string, typ domain.TransactionType, date string) domain.Candidate {
	a := decimal.RequireFromString(amount)
	return domain.Candidate{Amount: &a, Type: typ, Date: date}
}

// seedLedger creates one account and one category and returns their ids.
func seedLedger(t *testing.T, l *Ledger, initialBalance string) (int64, int64) {
	t.Helper()
	account, err := l.AddAccount("Main", decimal.RequireFromString(initialBalance))
	if err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}
	category, err := l.AddCategory("Salary", "wallet")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	return account.ID, category.ID
}

func TestCommitTransaction_DeriveBalance(t *testing.T) {
	l := testLedger(t)
	accountID, categoryID := seedLedger(t, l, "1000000")

	if _, err := l.CommitTransaction(candidate("200000", domain.Expense, "2024-05-01"), accountID, categoryID, ""); err != nil {
		t.Fatalf("commit expense: %v", err)
	}
	if _, err := l.CommitTransaction(candidate("50000", domain.Income, "2024-05-02"), accountID, categoryID, ""); err != nil {
		t.Fatalf("commit income: %v", err)
	}

	balances := l.Balances()
	if len(balances) != 1 {
		t.Fatalf("expected 1 account, got %d", len(balances))
	}
	want := decimal.RequireFromString("850000")
	if !balances[0].CurrentBalance.Equal(want) {
		t.Errorf("CurrentBalance = %s, want %s", balances[0].CurrentBalance, want)
	}
}

func TestCommitTransaction_OrderingByDateDescending(t *testing.T) {
	l := testLedger(t)
	accountID, categoryID := seedLedger(t, l, "0")

	// Commit out of date order; the visible log must still be most recent
	// date first.
	dates := []string{"2024-03-10", "2024-03-20", "2024-03-01"}
	for _, d := range dates {
		if _, err := l.CommitTransaction(candidate("100", domain.Income, d), accountID, categoryID, ""); err != nil {
			t.Fatalf("commit %s: %v", d, err)
		}
	}

	got := l.Transactions()
	wantOrder := []string{"2024-03-20", "2024-03-10", "2024-03-01"}
	for i, want := range wantOrder {
		if got[i].Date != want {
			t.Errorf("position %d: got date %s, want %s", i, got[i].Date, want)
		}
	}
}

func TestCommitTransaction_UndatedSortsLast(t *testing.T) {
	l := testLedger(t)
	accountID, categoryID := seedLedger(t, l, "0")

	if _, err := l.CommitTransaction(candidate("10", domain.Income, ""), accountID, categoryID, ""); err != nil {
		t.Fatalf("commit undated: %v", err)
	}
	if _, err := l.CommitTransaction(candidate("20", domain.Income, "2020-01-01"), accountID, categoryID, ""); err != nil {
		t.Fatalf("commit dated: %v", err)
	}

	got := l.Transactions()
	if got[0].Date != "2020-01-01" {
		t.Errorf("first entry date = %q, want 2020-01-01", got[0].Date)
	}
	if got[1].Date != "" {
		t.Errorf("last entry date = %q, want empty", got[1].Date)
	}
}

func TestCommitTransaction_SameDateKeepsCommitOrder(t *testing.T) {
	l := testLedger(t)
	accountID, categoryID := seedLedger(t, l, "0")

	first, err := l.CommitTransaction(candidate("1", domain.Income, "2024-06-01"), accountID, categoryID, "first")
	if err != nil {
		t.Fatalf("commit first: %v", err)
	}
	second, err := l.CommitTransaction(candidate("2", domain.Income, "2024-06-01"), accountID, categoryID, "second")
	if err != nil {
		t.Fatalf("commit second: %v", err)
	}

	got := l.Transactions()
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("same-date order = [%d %d], want most-recently-committed first [%d %d]",
			got[0].ID, got[1].ID, second.ID, first.ID)
	}
}

func TestCommitTransaction_MonotonicIDs(t *testing.T) {
	l := testLedger(t)
	accountID, categoryID := seedLedger(t, l, "0")

	var prev int64
	for i := 0; i < 5; i++ {
		tx, err := l.CommitTransaction(candidate("1", domain.Expense, ""), accountID, categoryID, "")
		if err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
		if tx.ID <= prev {
			t.Fatalf("transaction id %d not greater than previous %d", tx.ID, prev)
		}
		prev = tx.ID
	}
}

func TestCommitTransaction_Validation(t *testing.T) {
	l := testLedger(t)
	accountID, categoryID := seedLedger(t, l, "0")

	missingAmount := domain.Candidate{Type: domain.Expense}

	tests := []struct {
		name       string
		candidate  domain.Candidate
		accountID  int64
		categoryID int64
		wantKind   string
	}{
		{
			name:       "unknown account",
			candidate:  candidate("100", domain.Expense, ""),
			accountID:  999,
			categoryID: categoryID,
			wantKind:   "validation",
		},
		{
			name:       "unknown category",
			candidate:  candidate("100", domain.Expense, ""),
			accountID:  accountID,
			categoryID: 999,
			wantKind:   "validation",
		},
		{
			name:       "missing amount",
			candidate:  missingAmount,
			accountID:  accountID,
			categoryID: categoryID,
			wantKind:   "incomplete",
		},
		{
			name:       "missing type",
			candidate:  domain.Candidate{Amount: candidate("5", domain.Income, "").Amount},
			accountID:  accountID,
			categoryID: categoryID,
			wantKind:   "incomplete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(l.Transactions())

			_, err := l.CommitTransaction(tt.candidate, tt.accountID, tt.categoryID, "")
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var validationErr *domain.ValidationError
			var incompleteErr *domain.IncompleteDataError
			switch tt.wantKind {
			case "validation":
				if !errors.As(err, &validationErr) {
					t.Errorf("expected ValidationError, got %T: %v", err, err)
				}
			case "incomplete":
				if !errors.As(err, &incompleteErr) {
					t.Errorf("expected IncompleteDataError, got %T: %v", err, err)
				}
			}

			// A failed commit must leave the log unchanged.
			if after := len(l.Transactions()); after != before {
				t.Errorf("transaction count changed from %d to %d on failed commit", before, after)
			}
		})
	}
}

func TestAddCategory_DuplicateName(t *testing.T) {
	l := testLedger(t)

	if _, err := l.AddCategory("Groceries", ""); err != nil {
		t.Fatalf("first AddCategory: %v", err)
	}

	_, err := l.AddCategory("  groceries ", "")
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for duplicate name, got %v", err)
	}
}

func TestRestore_ResumesIDCounters(t *testing.T) {
	l := testLedger(t)
	l.Restore(
		[]domain.Account{{ID: 7, Name: "Saved"}},
		[]domain.Category{{ID: 3, Name: "Rent"}},
		[]domain.Transaction{{ID: 41, AccountID: 7, CategoryID: 3, Type: domain.Income, Amount: decimal.New(1, 0)}},
	)

	account, err := l.AddAccount("Fresh", decimal.Zero)
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	if account.ID != 8 {
		t.Errorf("new account id = %d, want 8", account.ID)
	}

	tx, err := l.CommitTransaction(candidate("1", domain.Income, ""), 7, 3, "")
	if err != nil {
		t.Fatalf("CommitTransaction: %v", err)
	}
	if tx.ID != 42 {
		t.Errorf("new transaction id = %d, want 42", tx.ID)
	}
}

func TestSubscribe_NotifiedAfterMutation(t *testing.T) {
	l := testLedger(t)
	accountID, categoryID := seedLedger(t, l, "0")

	var events []EventKind
	l.Subscribe(func(e Event) {
		events = append(events, e.Kind)
		// The mutation must already be visible to observers.
		if e.Kind == EventTransactions && len(l.Transactions()) == 0 {
			t.Error("observer ran before transaction became visible")
		}
	})

	if _, err := l.CommitTransaction(candidate("9", domain.Income, ""), accountID, categoryID, ""); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if len(events) != 1 || events[0] != EventTransactions {
		t.Errorf("events = %v, want [transactions]", events)
	}
}
