package ledger

import (
	"github.com/voznikov/banknote/internal/domain"
)

// ComputeBalances derives the current balance for every account:
// initial balance plus income minus expenses, restricted to that account's
// transactions. Pure and deterministic; empty inputs yield accounts at their
// initial balance. Transactions referencing unknown accounts are ignored
// here (commit validation prevents them from existing in the first place).
func ComputeBalances(accounts []domain.Account, transactions []domain.Transaction) []domain.AccountWithBalance {
	out := make([]domain.AccountWithBalance, len(accounts))
	index := make(map[int64]int, len(accounts))
	for i, a := range accounts {
		out[i] = domain.AccountWithBalance{Account: a, CurrentBalance: a.InitialBalance}
		index[a.ID] = i
	}

	for _, tx := range transactions {
		i, ok := index[tx.AccountID]
		if !ok {
			continue
		}
		switch tx.Type {
		case domain.Income:
			out[i].CurrentBalance = out[i].CurrentBalance.Add(tx.Amount)
		case domain.Expense:
			out[i].CurrentBalance = out[i].CurrentBalance.Sub(tx.Amount)
		}
	}

	return out
}

// Balances returns the derived balance view for the current account set and
// transaction log.
func (l *Ledger) Balances() []domain.AccountWithBalance {
	return ComputeBalances(l.Accounts(), l.Transactions())
}
