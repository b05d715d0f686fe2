package ledger

import (
	"errors"
	"sort"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/calculator"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/metrics"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
)

// Limits is the balance corridor enforced on non-system accounts.
type Limits struct {
	Lower money.Value
	Upper money.Value
}

// check applies the asymmetric limit policy to a computed delta map.
//
// An account may exceed the upper limit only while losing money and fall
// below the lower limit only while gaining money: the check blocks deltas
// whose sign worsens an out-of-range balance or pushes an in-range balance
// out, never movement back toward the legal range. System accounts are
// exempt. Violations are batched across all accounts and reported by name.
func (l Limits) check(deltas map[int64]calculator.AccountDelta, accounts map[int64]*models.Account) error {
	var tooMuch, tooLittle []string

	for id, d := range deltas {
		account := accounts[id]
		if account == nil || account.IsSystem() {
			continue
		}
		post := d.After()
		if post > l.Upper && d.Delta > 0 {
			tooMuch = append(tooMuch, account.Name)
		}
		if post < l.Lower && d.Delta < 0 {
			tooLittle = append(tooLittle, account.Name)
		}
	}

	sort.Strings(tooMuch)
	sort.Strings(tooLittle)

	var errs []error
	if len(tooMuch) > 0 {
		metrics.LimitViolationsTotal.WithLabelValues("too_much").Inc()
		errs = append(errs, &TooMuchMoneyError{Accounts: tooMuch})
	}
	if len(tooLittle) > 0 {
		metrics.LimitViolationsTotal.WithLabelValues("too_little").Inc()
		errs = append(errs, &TooLittleMoneyError{Accounts: tooLittle})
	}
	return errors.Join(errs...)
}
