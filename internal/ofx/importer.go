// Package ofx converts OFX/QFX bank statements into ledger transactions.
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
	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/model"
)

// StatementEntry is one transaction lifted out of a statement before it is
// bound to a local account and category.
type StatementEntry struct {
	Date        time.Time
	FiTID       string
	Description string
	Type        model.TransactionType
	Amount      decimal.Decimal
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocess fixes common formatting issues in OFX files exported by banks:
// stray leading whitespace, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX statement into entries. Statement amounts are
// signed; debits become expenses and credits become income, with the amount
// normalized to be non-negative.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]StatementEntry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []StatementEntry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			for _, ofxTx := range stmt.BankTranList.Transactions {
				entries = append(entries, p.convert(ofxTx))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			for _, ofxTx := range stmt.BankTranList.Transactions {
				entries = append(entries, p.convert(ofxTx))
			}
		}
	}

	slog.Info("parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convert(ofxTx ofxgo.Transaction) StatementEntry {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	entry := StatementEntry{
		FiTID:       string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time,
		Description: p.description(ofxTx),
	}

	// OFX uses negative amounts for debits.
	if amount.IsNegative() {
		entry.Type = model.TypeExpense
		entry.Amount = amount.Neg()
	} else {
		entry.Type = model.TypeIncome
		entry.Amount = amount
	}

	return entry
}

// description picks the cleanest available label for a statement entry.
func (p *Parser) description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if name == "" {
		name = strings.TrimSpace(string(tx.Memo))
	}
	if name == "" {
		name = "Imported transaction"
	}
	return name
}
