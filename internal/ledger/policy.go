package ledger

import "github.com/mkovalch/hroshi/internal/model"

// creditPolicy captures the per-type behavior of the engine in one place
// so create, pay and undo stay consistent across the four credit types.
type creditPolicy struct {
	// installmentSchedule: the account repays in a fixed number of
	// installments and the per-installment payment is computed from the
	// principal, overriding any user-supplied monthly payment.
	installmentSchedule bool
	// mirrorsExpense: every payment synthesizes a matching expense
	// transaction in the main ledger.
	mirrorsExpense bool
	// requiresDueDate: the account must carry a payment due date at
	// creation time.
	requiresDueDate bool
	// acceptsInitialPaid: the create form may seed an already-paid amount
	// (revolving limits opened with part of the limit used up).
	acceptsInitialPaid bool
}

var creditPolicies = map[model.CreditType]creditPolicy{
	model.CreditTypeInstallment: {
		installmentSchedule: true,
		mirrorsExpense:      true,
		requiresDueDate:     true,
	},
	model.CreditTypePayInParts: {
		installmentSchedule: true,
		mirrorsExpense:      true,
		requiresDueDate:     true,
	},
	model.CreditTypeCreditLimit: {
		// Limit repayments are capital returns, not categorized spend.
		acceptsInitialPaid: true,
	},
	model.CreditTypeLoan: {
		mirrorsExpense:  true,
		requiresDueDate: true,
	},
}

func policyFor(creditType model.CreditType) creditPolicy {
	return creditPolicies[creditType]
}
