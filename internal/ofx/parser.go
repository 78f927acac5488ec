// Package ofx imports bank-statement files (OFX/QFX) as ledger
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/service"
)

// Entry is one statement line, normalized for the ledger: amounts are
// positive and the direction is carried by the transaction type.
type Entry struct {
	Date   time.Time
	Name   string
	Memo   string
	Type   model.TransactionType
	Amount float64
}

// Parser reads OFX/QFX statement files.
type Parser struct{}

// NewParser creates an OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes formatting quirks seen in real bank exports: leading
// blank lines, mixed-case SEVERITY values and SGML tags missing their
// closing bracket.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRe.ReplaceAllString(content, "$1>")
	return content
}

// ParseFile parses a statement file into ledger entries. Deposits become
// INCOME entries, withdrawals become EXPENSE entries.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []Entry

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, txn := range stmt.BankTranList.Transactions {
				entries = append(entries, convertTransaction(txn))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, txn := range stmt.BankTranList.Transactions {
				entries = append(entries, convertTransaction(txn))
			}
		}
	}

	slog.Info("parsed OFX statement", "entries", len(entries))
	return entries, nil
}

func convertTransaction(txn ofxgo.Transaction) Entry {
	// OFX signs amounts: negative for money out, positive for money in.
	amount, _ := txn.TrnAmt.Float64()
	entryType := model.TransactionTypeIncome
	if amount < 0 {
		amount = -amount
		entryType = model.TransactionTypeExpense
	}

	name := string(txn.Name)
	if txn.Payee != nil && txn.Payee.Name != "" {
		name = string(txn.Payee.Name)
	}

	return Entry{
		Date:   txn.DtPosted.Time,
		Name:   strings.TrimSpace(name),
		Memo:   strings.TrimSpace(string(txn.Memo)),
		Type:   entryType,
		Amount: amount,
	}
}

// Importer persists parsed entries as ledger transactions.
type Importer struct {
	store service.Storage
}

// NewImporter creates an importer over the given store.
func NewImporter(store service.Storage) *Importer {
	return &Importer{store: store}
}

// Import writes the entries in one store transaction, filing income under
// incomeCategoryID and spending under expenseCategoryID. Returns the
// number of imported rows.
func (i *Importer) Import(ctx context.Context, entries []Entry, incomeCategoryID, expenseCategoryID int64) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := i.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	imported := 0
	for _, entry := range entries {
		if entry.Amount <= 0 {
			continue
		}

		categoryID := expenseCategoryID
		if entry.Type == model.TransactionTypeIncome {
			categoryID = incomeCategoryID
		}

		note := entry.Name
		if entry.Memo != "" && entry.Memo != entry.Name {
			note = fmt.Sprintf("%s (%s)", entry.Name, entry.Memo)
		}

		_, err := tx.CreateTransaction(ctx, &model.Transaction{
			Amount:     entry.Amount,
			Date:       entry.Date,
			CategoryID: categoryID,
			Type:       entry.Type,
			Note:       note,
		})
		if err != nil {
			return 0, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("imported statement entries", "count", imported)
	return imported, nil
}
