package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allEnabled(Method) bool { return true }

func TestReconcile_CashAndCardCoverTotal(t *testing.T) {
	// Cash of 70 with 10 change contributes 60 net; the card adds 40.
	payments, err := reconcile([]PaymentParams{
		{Method: MethodCash, Amount: dec("70"), AmountReceived: dec("70"), ChangeReturned: dec("10")},
		{Method: MethodCard, Amount: dec("40"), CardType: "VISA", Reference: "X"},
	}, dec("100.00"), allEnabled)

	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.True(t, payments[0].NetContribution().Equal(dec("60")))
	assert.True(t, payments[1].NetContribution().Equal(dec("40")))
}

func TestReconcile_InsufficientAfterChange(t *testing.T) {
	// 50 tendered minus 20 change plus a 10 card payment leaves 40
	// against a 50 total.
	_, err := reconcile([]PaymentParams{
		{Method: MethodCash, Amount: dec("50"), AmountReceived: dec("50"), ChangeReturned: dec("20")},
		{Method: MethodCard, Amount: dec("10"), CardType: "VISA", Reference: "X"},
	}, dec("50.00"), allEnabled)

	var insufficientErr *InsufficientPaymentError
	require.ErrorAs(t, err, &insufficientErr)
	assert.True(t, insufficientErr.NetTotal.Equal(dec("40")))
	assert.True(t, insufficientErr.Shortfall.Equal(dec("10")))
}

func TestReconcile_OverpaymentAccepted(t *testing.T) {
	payments, err := reconcile([]PaymentParams{
		{Method: MethodCard, Amount: dec("120"), CardType: "VISA", Reference: "X"},
	}, dec("100"), allEnabled)

	require.NoError(t, err)
	require.Len(t, payments, 1)
}

func TestBuildPayment_RequiredFields(t *testing.T) {
	customerID := uuid.New()

	type testCase struct {
		name      string
		params    PaymentParams
		wantField string
	}

	tests := []testCase{
		{
			name:      "CardWithoutType",
			params:    PaymentParams{Method: MethodCard, Amount: dec("999"), Reference: "X"},
			wantField: "payment.card_type",
		},
		{
			name:      "CardWithoutReference",
			params:    PaymentParams{Method: MethodCard, Amount: dec("999"), CardType: "VISA"},
			wantField: "payment.reference",
		},
		{
			name:      "TransferWithoutBank",
			params:    PaymentParams{Method: MethodTransfer, Amount: dec("10"), Reference: "T-1"},
			wantField: "payment.bank",
		},
		{
			name:      "TransferWithoutReference",
			params:    PaymentParams{Method: MethodTransfer, Amount: dec("10"), Bank: "BBVA"},
			wantField: "payment.reference",
		},
		{
			name:      "CreditWithoutAnyReference",
			params:    PaymentParams{Method: MethodCredit, Amount: dec("10")},
			wantField: "payment.credit",
		},
		{
			name:      "NegativeAmount",
			params:    PaymentParams{Method: MethodCash, Amount: dec("-1")},
			wantField: "payment.amount",
		},
		{
			name: "CashChangeExceedsAmount",
			params: PaymentParams{
				Method: MethodCash, Amount: dec("10"),
				AmountReceived: dec("10"), ChangeReturned: dec("11"),
			},
			wantField: "payment.change_returned",
		},
		{
			name:      "UnknownMethod",
			params:    PaymentParams{Method: Method("barter"), Amount: dec("10")},
			wantField: "payment.method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildPayment(tt.params, allEnabled)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}

	t.Run("CreditWithCustomerOnly", func(t *testing.T) {
		p, err := buildPayment(PaymentParams{
			Method: MethodCredit, Amount: dec("10"), CustomerID: &customerID,
		}, allEnabled)

		require.NoError(t, err)
		require.NotNil(t, p.Credit)
		assert.Equal(t, &customerID, p.Credit.CustomerID)
	})

	t.Run("CreditWithReferenceOnly", func(t *testing.T) {
		p, err := buildPayment(PaymentParams{
			Method: MethodCredit, Amount: dec("10"), CreditReference: "CR-7",
		}, allEnabled)

		require.NoError(t, err)
		require.NotNil(t, p.Credit)
		assert.Equal(t, "CR-7", p.Credit.Reference)
	})
}

func TestBuildPayment_DisabledMethod(t *testing.T) {
	onlyCash := func(m Method) bool { return m == MethodCash }

	_, err := buildPayment(PaymentParams{
		Method: MethodCard, Amount: dec("10"), CardType: "VISA", Reference: "X",
	}, onlyCash)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payment.method", vErr.Field)
}

func TestReconcile_ValidationBeforeSufficiency(t *testing.T) {
	// A malformed transfer fails on its missing reference even though the
	// amounts would not cover the total either.
	_, err := reconcile([]PaymentParams{
		{Method: MethodTransfer, Amount: dec("1"), Bank: "BBVA"},
	}, dec("1000"), allEnabled)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payment.reference", vErr.Field)
}

func TestNetContribution_SumsAcrossMethods(t *testing.T) {
	customerID := uuid.New()

	params := []PaymentParams{
		{Method: MethodCash, Amount: dec("25.50"), AmountReceived: dec("30"), ChangeReturned: dec("4.50")},
		{Method: MethodCard, Amount: dec("10"), CardType: "MC", Reference: "A"},
		{Method: MethodTransfer, Amount: dec("14.25"), Bank: "N26", Reference: "B"},
		{Method: MethodCredit, Amount: dec("5"), CustomerID: &customerID},
	}

	payments, err := reconcile(params, dec("50.25"), allEnabled)
	require.NoError(t, err)

	net := dec("0")
	for _, p := range payments {
		net = net.Add(p.NetContribution())
	}

	// 21 + 10 + 14.25 + 5
	assert.True(t, net.Equal(dec("50.25")))
}
