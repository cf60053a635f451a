package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountBalance aggregates the ledger movement of one account.
type AccountBalance struct {
	Account string          `json:"account"`
	Opening decimal.Decimal `json:"opening"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// Closing computes the closing balance for the account.
func (a AccountBalance) Closing() decimal.Decimal {
	return a.Opening.Add(a.Debit).Sub(a.Credit)
}

// GroupKey groups ERP account names ("1110 - Cash - AC") by the leading
// digits of their number, falling back to the company suffix.
func (a AccountBalance) GroupKey() string {
	head := strings.TrimSpace(strings.SplitN(a.Account, " - ", 2)[0])
	if len(head) >= 2 && isDigits(head) {
		return head[:2]
	}
	if idx := strings.LastIndex(a.Account, " - "); idx >= 0 {
		return strings.TrimSpace(a.Account[idx+3:])
	}
	return a.Account
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Account string          `json:"account"`
	Opening decimal.Decimal `json:"opening"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Closing decimal.Decimal `json:"closing"`
}

// TrialBalanceGroup aggregates accounts for presentation.
type TrialBalanceGroup struct {
	Key      string                `json:"key"`
	Accounts []TrialBalanceAccount `json:"accounts"`
	Opening  decimal.Decimal       `json:"opening"`
	Debit    decimal.Decimal       `json:"debit"`
	Credit   decimal.Decimal       `json:"credit"`
	Closing  decimal.Decimal       `json:"closing"`
}

// TrialBalance is the structure returned to the UI.
type TrialBalance struct {
	FromDate     string              `json:"from_date"`
	ToDate       string              `json:"to_date"`
	Groups       []TrialBalanceGroup `json:"groups"`
	TotalOpening decimal.Decimal     `json:"total_opening"`
	TotalDebit   decimal.Decimal     `json:"total_debit"`
	TotalCredit  decimal.Decimal     `json:"total_credit"`
	TotalClosing decimal.Decimal     `json:"total_closing"`
}

// BuildTrialBalance converts account balances into grouped trial balance data.
func BuildTrialBalance(accounts []AccountBalance) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	tb := TrialBalance{
		Groups:       []TrialBalanceGroup{},
		TotalOpening: decimal.Zero,
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
		TotalClosing: decimal.Zero,
	}
	for _, acc := range accounts {
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key, Opening: decimal.Zero, Debit: decimal.Zero, Credit: decimal.Zero, Closing: decimal.Zero}
			groups[key] = grp
			keys = append(keys, key)
		}
		closing := acc.Closing()
		grp.Accounts = append(grp.Accounts, TrialBalanceAccount{
			Account: acc.Account,
			Opening: acc.Opening,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Closing: closing,
		})
		grp.Opening = grp.Opening.Add(acc.Opening)
		grp.Debit = grp.Debit.Add(acc.Debit)
		grp.Credit = grp.Credit.Add(acc.Credit)
		grp.Closing = grp.Closing.Add(closing)

		tb.TotalOpening = tb.TotalOpening.Add(acc.Opening)
		tb.TotalDebit = tb.TotalDebit.Add(acc.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(acc.Credit)
		tb.TotalClosing = tb.TotalClosing.Add(closing)
	}
	sort.Strings(keys)
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool { return grp.Accounts[i].Account < grp.Accounts[j].Account })
		tb.Groups = append(tb.Groups, *grp)
	}
	return tb
}

// accumulateBalances folds opening and period ledger rows into per-account balances.
func accumulateBalances(opening, period []GLEntry) []AccountBalance {
	index := make(map[string]int)
	out := make([]AccountBalance, 0)
	get := func(account string) *AccountBalance {
		i, ok := index[account]
		if !ok {
			i = len(out)
			index[account] = i
			out = append(out, AccountBalance{Account: account, Opening: decimal.Zero, Debit: decimal.Zero, Credit: decimal.Zero})
		}
		return &out[i]
	}
	for _, e := range opening {
		acc := get(e.Account)
		acc.Opening = acc.Opening.Add(e.Debit).Sub(e.Credit)
	}
	for _, e := range period {
		acc := get(e.Account)
		acc.Debit = acc.Debit.Add(e.Debit)
		acc.Credit = acc.Credit.Add(e.Credit)
	}
	return out
}
