package model

import "time"

// CreditType distinguishes the repayment shape of a credit account.
type CreditType string

const (
	// CreditTypeInstallment is a fixed-schedule installment loan.
	CreditTypeInstallment CreditType = "INSTALLMENT"
	// CreditTypePayInParts is a pay-in-parts plan (installment family).
	CreditTypePayInParts CreditType = "PAY_IN_PARTS"
	// CreditTypeCreditLimit is a revolving credit limit.
	CreditTypeCreditLimit CreditType = "CREDIT_LIMIT"
	// CreditTypeLoan is a general loan without a fixed schedule.
	CreditTypeLoan CreditType = "LOAN"
)

// Valid reports whether the credit type is one of the known values.
func (t CreditType) Valid() bool {
	switch t {
	case CreditTypeInstallment, CreditTypePayInParts, CreditTypeCreditLimit, CreditTypeLoan:
		return true
	}
	return false
}

// CreditAccount tracks a single credit obligation. Its balance, paid
// installment counter and due date are mutated exclusively by the ledger
// engine.
type CreditAccount struct {
	StartDate        time.Time
	EndDate          *time.Time
	PaymentDueDate   *time.Time
	MonthlyPayment   *float64
	InterestRate     *float64
	InstallmentCount *int
	Name             string
	Note             string
	Type             CreditType
	ID               int64
	PaidInstallments int
	TotalAmount      float64
	RemainingAmount  float64
}

// IsInstallment reports whether the account repays on a fixed installment
// schedule.
func (c *CreditAccount) IsInstallment() bool {
	return c.Type == CreditTypeInstallment || c.Type == CreditTypePayInParts
}

// Settled reports whether the debt is fully repaid.
func (c *CreditAccount) Settled() bool {
	return c.RemainingAmount <= 0
}

// InstallmentAmount returns the fixed payment for one installment: the
// stored monthly payment if present, otherwise the principal split evenly
// across installments. Returns 0 for accounts without an installment count.
func (c *CreditAccount) InstallmentAmount() float64 {
	if c.MonthlyPayment != nil {
		return *c.MonthlyPayment
	}
	if c.InstallmentCount != nil && *c.InstallmentCount > 0 {
		return c.TotalAmount / float64(*c.InstallmentCount)
	}
	return 0
}

// CreditPayment is a single repayment against a credit account. Rows are
// append/delete only, never updated in place.
type CreditPayment struct {
	PaymentDate     time.Time
	ID              int64
	CreditAccountID int64
	Amount          float64
}
