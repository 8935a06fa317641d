package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bankist-dev/bankist/internal/history"
	"github.com/bankist-dev/bankist/internal/model"
)

// File names inside the data directory.
const (
	AccountsFile     = "accounts.csv"
	TransactionsFile = "transactions.csv"
)

// Load reads accounts.csv and transactions.csv from dataDir and attaches
// each account's history. The result is validated; every problem is
// reported in the returned error.
func Load(dataDir string) ([]model.Account, error) {
	f, err := os.Open(filepath.Join(dataDir, AccountsFile))
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}

	recs, err := loadHistory(filepath.Join(dataDir, TransactionsFile))
	if err != nil {
		return nil, err
	}

	problems := ValidateHistory(recs, accts)
	groups := history.Group(recs)
	for i := range accts {
		accts[i].Transactions = groups[accts[i].ID]
	}
	problems = append(problems, Validate(accts)...)

	if len(problems) > 0 {
		errs := make([]error, len(problems))
		for i, p := range problems {
			errs[i] = p
		}
		return nil, fmt.Errorf("invalid fixture data: %w", errors.Join(errs...))
	}
	return accts, nil
}

func loadHistory(path string) ([]history.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()

	recs, err := history.ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}
	return recs, nil
}

// Save writes accounts and their histories to dataDir, replacing both files.
func Save(dataDir string, accts []model.Account) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	af, err := os.Create(filepath.Join(dataDir, AccountsFile))
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	defer af.Close()
	if err := WriteAccounts(af, accts); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}

	tf, err := os.Create(filepath.Join(dataDir, TransactionsFile))
	if err != nil {
		return fmt.Errorf("creating transactions file: %w", err)
	}
	defer tf.Close()
	if err := history.WriteTransactions(tf, history.Flatten(accts)); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}
	return nil
}
