package sale

import (
	"github.com/shopspring/decimal"
)

// buildPayment checks the method-specific required fields of one proposed
// payment and assembles the tagged Payment value for it.
func buildPayment(params PaymentParams, enabled func(Method) bool) (Payment, error) {
	if params.Amount.IsNegative() {
		return Payment{}, invalidf("payment.amount", "must not be negative")
	}

	if !enabled(params.Method) {
		return Payment{}, invalidf("payment.method", "%s payments are not enabled for this tenant", params.Method)
	}

	p := Payment{
		Method: params.Method,
		Amount: params.Amount,
	}

	switch params.Method {
	case MethodCash:
		if params.ChangeReturned.IsNegative() || params.AmountReceived.IsNegative() {
			return Payment{}, invalidf("payment.cash", "received and change must not be negative")
		}

		if params.ChangeReturned.GreaterThan(params.Amount) {
			return Payment{}, invalidf("payment.change_returned", "exceeds the tendered amount")
		}

		p.Cash = &CashDetails{
			Received: params.AmountReceived,
			Change:   params.ChangeReturned,
		}

	case MethodCard:
		if params.CardType == "" {
			return Payment{}, invalidf("payment.card_type", "required for card payments")
		}

		if params.Reference == "" {
			return Payment{}, invalidf("payment.reference", "required for card payments")
		}

		p.Card = &CardDetails{
			CardType:  params.CardType,
			Reference: params.Reference,
		}

	case MethodTransfer:
		if params.Bank == "" {
			return Payment{}, invalidf("payment.bank", "required for transfer payments")
		}

		if params.Reference == "" {
			return Payment{}, invalidf("payment.reference", "required for transfer payments")
		}

		p.Transfer = &TransferDetails{
			Bank:      params.Bank,
			Reference: params.Reference,
		}

	case MethodCredit:
		if params.CustomerID == nil && params.CreditReference == "" {
			return Payment{}, invalidf("payment.credit", "either customer or credit reference is required")
		}

		p.Credit = &CreditDetails{
			CustomerID: params.CustomerID,
			Reference:  params.CreditReference,
		}

	default:
		return Payment{}, invalidf("payment.method", "unknown method %q", params.Method)
	}

	return p, nil
}

// reconcile validates every proposed payment and checks that the summed
// net contributions cover the grand total. The grand total passed here is
// always the server-computed one; caller-supplied totals are never
// trusted. Overpayment is accepted: change is the caller's concern and
// has already been netted out of cash contributions.
func reconcile(params []PaymentParams, grandTotal decimal.Decimal, enabled func(Method) bool) ([]Payment, error) {
	payments := make([]Payment, 0, len(params))
	netTotal := decimal.Zero

	for _, pp := range params {
		p, err := buildPayment(pp, enabled)
		if err != nil {
			return nil, err
		}

		payments = append(payments, p)
		netTotal = netTotal.Add(p.NetContribution())
	}

	if netTotal.LessThan(grandTotal) {
		return nil, &InsufficientPaymentError{
			GrandTotal: grandTotal,
			NetTotal:   netTotal,
			Shortfall:  grandTotal.Sub(netTotal),
		}
	}

	return payments, nil
}
