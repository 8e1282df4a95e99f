package ledger

import (
	"context"
	"fmt"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// JournalBuilder turns a posted bill or invoice into a balanced journal
// transaction in the ledger currency. All component legs (line amounts,
// tax legs, discount slices) are converted individually; the control
// leg on the payable/receivable account is derived from the converted
// counter legs so per-leg rounding can never unbalance the journal.
type JournalBuilder struct {
	converter CurrencyConverter
}

// NewJournalBuilder creates a journal builder
func NewJournalBuilder(converter CurrencyConverter) *JournalBuilder {
	return &JournalBuilder{converter: converter}
}

// BuildInitialTransaction builds the journal transaction posted when a
// bill or invoice is approved.
//
// Bills credit accounts payable and debit each line's expense account;
// invoices debit accounts receivable and credit each line's income
// account. Taxes with a configured account get their own leg;
// non-recoverable purchase taxes and taxes without an account fold into
// the line's posting leg. Discounts post to the adjustment's account
// when set, otherwise to the company's sales/purchase discount account.
// A per-document discount is allocated across lines first, one leg per
// slice.
func (b *JournalBuilder) BuildInitialTransaction(ctx context.Context, doc *accounting.Document, accounts PostingAccounts, ledgerCurrency valueobject.Currency) (*Transaction, error) {
	if !doc.Kind.HasPaymentAxis() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("%s documents do not post journal transactions", doc.Kind))
	}
	if !doc.IsPosted() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Cannot build a journal for an unposted document")
	}

	var controlAccount uuid.UUID
	var controlType, counterType JournalEntryType
	if doc.Kind == accounting.DocumentKindBill {
		controlAccount = accounts.Payable
		controlType = JournalEntryTypeCredit
		counterType = JournalEntryTypeDebit
	} else {
		controlAccount = accounts.Receivable
		controlType = JournalEntryTypeDebit
		counterType = JournalEntryTypeCredit
	}

	txn, err := NewTransaction(doc.CompanyID, TransactionTypeJournal, valueobject.Zero(ledgerCurrency), doc.IssueDate,
		fmt.Sprintf("Posting for %s", doc.Number))
	if err != nil {
		return nil, err
	}
	txn.DocumentID = &doc.ID

	for i := range doc.LineItems {
		item := &doc.LineItems[i]

		lineCents, err := b.converter.Convert(ctx, item.Subtotal.Amount(), doc.Currency, ledgerCurrency)
		if err != nil {
			return nil, err
		}

		for _, tax := range item.Taxes() {
			taxCents, err := b.converter.Convert(ctx, item.AdjustmentAmount(tax), doc.Currency, ledgerCurrency)
			if err != nil {
				return nil, err
			}
			if b.taxFoldsIntoLine(doc.Kind, tax) {
				lineCents += taxCents
				continue
			}
			if err := txn.AddEntry(*tax.AccountID, counterType,
				valueobject.MustNewMoney(taxCents, ledgerCurrency),
				fmt.Sprintf("%s on %s", tax.Name, item.Description)); err != nil {
				return nil, err
			}
		}

		if err := txn.AddEntry(item.PostingAccountID, counterType,
			valueobject.MustNewMoney(lineCents, ledgerCurrency), item.Description); err != nil {
			return nil, err
		}

		if doc.DiscountMethod == accounting.DiscountMethodPerLineItem {
			for _, discount := range item.Discounts() {
				discountCents, err := b.converter.Convert(ctx, item.AdjustmentAmount(discount), doc.Currency, ledgerCurrency)
				if err != nil {
					return nil, err
				}
				if discountCents == 0 {
					continue
				}
				if err := txn.AddEntry(b.discountAccount(doc.Kind, discount.AccountID, accounts), controlType,
					valueobject.MustNewMoney(discountCents, ledgerCurrency),
					fmt.Sprintf("%s on %s", discount.Name, item.Description)); err != nil {
					return nil, err
				}
			}
		}
	}

	if doc.DiscountMethod == accounting.DiscountMethodPerDocument {
		if err := b.addDocumentDiscountEntries(ctx, txn, doc, accounts, controlType, ledgerCurrency); err != nil {
			return nil, err
		}
	}

	// The control leg balances the converted counter legs exactly.
	var controlCents int64
	if controlType == JournalEntryTypeCredit {
		controlCents = txn.DebitTotal() - txn.CreditTotal()
	} else {
		controlCents = txn.CreditTotal() - txn.DebitTotal()
	}
	if controlCents < 0 {
		return nil, shared.ErrUnbalancedJournal
	}
	if err := txn.AddEntry(controlAccount, controlType,
		valueobject.MustNewMoney(controlCents, ledgerCurrency), doc.Number); err != nil {
		return nil, err
	}
	txn.Amount = valueobject.MustNewMoney(controlCents, ledgerCurrency)

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	return txn, nil
}

// taxFoldsIntoLine reports whether a tax amount is folded into the
// line's posting leg instead of getting its own account leg.
func (b *JournalBuilder) taxFoldsIntoLine(kind accounting.DocumentKind, tax accounting.Adjustment) bool {
	if tax.AccountID == nil {
		return true
	}
	return kind == accounting.DocumentKindBill && tax.IsNonRecoverablePurchaseTax()
}

// discountAccount picks the account a discount leg posts to
func (b *JournalBuilder) discountAccount(kind accounting.DocumentKind, accountID *uuid.UUID, accounts PostingAccounts) uuid.UUID {
	if accountID != nil {
		return *accountID
	}
	if kind == accounting.DocumentKindBill {
		return accounts.PurchaseDiscount
	}
	return accounts.SalesDiscount
}

// addDocumentDiscountEntries converts the document-level discount into
// the ledger currency, allocates it across line items by subtotal and
// adds one leg per slice. The allocation happens after conversion so
// the slices sum to the converted discount exactly.
func (b *JournalBuilder) addDocumentDiscountEntries(ctx context.Context, txn *Transaction, doc *accounting.Document, accounts PostingAccounts, controlType JournalEntryType, ledgerCurrency valueobject.Currency) error {
	discountCents, err := b.converter.Convert(ctx, doc.DocumentDiscount(), doc.Currency, ledgerCurrency)
	if err != nil {
		return err
	}
	if discountCents == 0 {
		return nil
	}

	account := accounts.SalesDiscount
	if doc.Kind == accounting.DocumentKindBill {
		account = accounts.PurchaseDiscount
	}

	for _, allocation := range accounting.AllocateDocumentDiscount(doc.LineItems, discountCents) {
		if allocation.Amount == 0 {
			continue
		}
		item := doc.GetItem(allocation.LineItemID)
		description := doc.Number
		if item != nil {
			description = fmt.Sprintf("Discount on %s", item.Description)
		}
		if err := txn.AddEntry(account, controlType,
			valueobject.MustNewMoney(allocation.Amount, ledgerCurrency), description); err != nil {
			return err
		}
	}
	return nil
}
