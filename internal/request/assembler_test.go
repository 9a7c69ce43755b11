package request_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/diag"
	"github.com/jmauzyk/commerce-omnipay/internal/itembag"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

type stubURLs struct{}

func (stubURLs) ActionURL(action string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return "https://shop.test/" + action + "?" + q.Encode()
}

func (stubURLs) SiteURL(path string) string {
	return "https://shop.test" + path
}

func (stubURLs) WebhookURL(params map[string]string) string {
	return "https://shop.test/webhook?hash=" + params["commerceTransactionHash"]
}

func testOrder() *commerce.Order {
	return &commerce.Order{
		ID:         42,
		Email:      "buyer@example.com",
		Currency:   "USD",
		TotalPrice: 20.00,
		CancelURL:  "/cart",
		LineItems: []commerce.LineItem{
			{ID: 1, Qty: 2, SalePrice: 10.00, Snapshot: "Widget"},
		},
	}
}

func testTxn(typ commerce.TransactionType) *commerce.Transaction {
	order := testOrder()
	return &commerce.Transaction{
		ID:       100,
		Hash:     "txn-hash-100",
		Type:     typ,
		Amount:   20.00,
		Currency: "USD",
		OrderID:  order.ID,
		Order:    order,
	}
}

func testForm() *commerce.PaymentForm {
	return &commerce.PaymentForm{FirstName: "Card", LastName: "Holder", Number: "4242424242424242", Month: 1, Year: 2031, CVV: "999"}
}

func newAssembler(t *testing.T, mutate func(*request.Config)) *request.Assembler {
	t.Helper()
	cfg := request.Config{
		URLs:         stubURLs{},
		Items:        itembag.NewBuilder(diag.Discard{}),
		SendCartInfo: true,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := request.NewAssembler(cfg)
	require.NoError(t, err)
	return a
}

func TestNewAssembler(t *testing.T) {
	_, err := request.NewAssembler(request.Config{Items: itembag.NewBuilder(nil)})
	assert.Error(t, err, "url builder is required")

	_, err = request.NewAssembler(request.Config{URLs: stubURLs{}})
	assert.Error(t, err, "item bag builder is required")
}

func TestAssemble_PriorTransactionTypes(t *testing.T) {
	a := newAssembler(t, nil)

	for _, typ := range []commerce.TransactionType{commerce.TypeRefund, commerce.TypeCapture} {
		t.Run(string(typ), func(t *testing.T) {
			p := a.Assemble(context.Background(), testTxn(typ), testForm())

			assert.Nil(t, p.Card, "prior-transaction operations must not resubmit card data")
			assert.Nil(t, p.Items)
			assert.Equal(t, 20.00, p.Amount)
			assert.Equal(t, "USD", p.Currency)
			assert.Equal(t, "txn-hash-100", p.TransactionID)
			assert.Equal(t, "txn-hash-100", p.TransactionReference)
			assert.Equal(t, "Order #42", p.Description)
		})
	}
}

func TestAssemble_PaymentTypes(t *testing.T) {
	t.Run("card and items attach when a form is supplied", func(t *testing.T) {
		a := newAssembler(t, nil)
		p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), testForm())

		require.NotNil(t, p.Card)
		assert.Equal(t, "4242424242424242", p.Card.Number)
		require.Len(t, p.Items, 1)
		assert.Equal(t, "Widget", p.Items[0].Name)
	})

	t.Run("no form yields no card but items remain", func(t *testing.T) {
		a := newAssembler(t, nil)
		p := a.Assemble(context.Background(), testTxn(commerce.TypeCompletePurchase), nil)

		assert.Nil(t, p.Card)
		require.Len(t, p.Items, 1)
	})

	t.Run("cart info switch suppresses items", func(t *testing.T) {
		a := newAssembler(t, func(cfg *request.Config) { cfg.SendCartInfo = false })
		p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), testForm())

		assert.Nil(t, p.Items)
	})

	t.Run("populate override may add and overwrite fields", func(t *testing.T) {
		a := newAssembler(t, func(cfg *request.Config) {
			cfg.Populate = func(p *request.Payload, form *commerce.PaymentForm) {
				p.Description = "overridden"
				p.Extra["gatewaySpecific"] = form.CVV
			}
		})
		p := a.Assemble(context.Background(), testTxn(commerce.TypeAuthorize), testForm())

		assert.Equal(t, "overridden", p.Description)
		assert.Equal(t, "999", p.Extra["gatewaySpecific"])
	})

	t.Run("populate override does not run for prior-transaction types", func(t *testing.T) {
		called := false
		a := newAssembler(t, func(cfg *request.Config) {
			cfg.Populate = func(p *request.Payload, form *commerce.PaymentForm) { called = true }
		})
		a.Assemble(context.Background(), testTxn(commerce.TypeRefund), nil)

		assert.False(t, called)
	})

	t.Run("items filter can replace the bag", func(t *testing.T) {
		a := newAssembler(t, func(cfg *request.Config) {
			cfg.ItemsFilter = func(_ context.Context, _ *commerce.Order, items []itembag.Item) []itembag.Item {
				return append(items, itembag.Item{Name: "Gift wrap", Quantity: 1, Price: 0.01})
			}
		})
		p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), nil)

		require.Len(t, p.Items, 2)
		assert.Equal(t, "Gift wrap", p.Items[1].Name)
	})
}

func TestAssemble_URLs(t *testing.T) {
	t.Run("return and cancel urls", func(t *testing.T) {
		a := newAssembler(t, nil)
		p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), nil)

		assert.Contains(t, p.ReturnURL, request.CompletePaymentAction)
		assert.Contains(t, p.ReturnURL, "commerceTransactionHash=txn-hash-100")
		assert.Contains(t, p.ReturnURL, "commerceTransactionId=100")
		assert.Equal(t, "https://shop.test/cart", p.CancelURL)
	})

	t.Run("notify url equals webhook url when supported", func(t *testing.T) {
		a := newAssembler(t, func(cfg *request.Config) { cfg.SupportsWebhooks = true })
		p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), nil)

		assert.Equal(t, "https://shop.test/webhook?hash=txn-hash-100", p.NotifyURL)
	})

	t.Run("notify url falls back to return url", func(t *testing.T) {
		a := newAssembler(t, nil)
		p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), nil)

		assert.Equal(t, p.ReturnURL, p.NotifyURL)
	})
}

func TestAssemble_ClientIP(t *testing.T) {
	a := newAssembler(t, nil)

	t.Run("ipv6 loopback is rewritten", func(t *testing.T) {
		ctx := request.WithClientIP(context.Background(), "::1")
		p := a.Assemble(ctx, testTxn(commerce.TypePurchase), nil)
		assert.Equal(t, "127.0.0.1", p.ClientIP)
	})

	t.Run("other addresses pass through", func(t *testing.T) {
		ctx := request.WithClientIP(context.Background(), "203.0.113.9")
		p := a.Assemble(ctx, testTxn(commerce.TypePurchase), nil)
		assert.Equal(t, "203.0.113.9", p.ClientIP)
	})

	t.Run("absent ip yields empty field", func(t *testing.T) {
		p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), nil)
		assert.Empty(t, p.ClientIP)
	})
}

func TestAssemble_ExtraFields(t *testing.T) {
	a := newAssembler(t, nil)
	p := a.Assemble(context.Background(), testTxn(commerce.TypePurchase), nil)

	assert.Equal(t, "buyer@example.com", p.Extra[request.KeyReceiptEmail])
	assert.Equal(t, 1, p.Extra[request.KeyNoShipping])
	assert.Equal(t, 0, p.Extra[request.KeyAllowNote])
	assert.Equal(t, 1, p.Extra[request.KeyAddressOverride])

	require.NotNil(t, p.Order, "order back-reference travels with the payload")
	assert.Equal(t, int64(42), p.OrderID)
}

func ExampleAssembler_Assemble() {
	items := itembag.NewBuilder(diag.Discard{})
	a, _ := request.NewAssembler(request.Config{URLs: stubURLs{}, Items: items, SendCartInfo: true})

	order := testOrder()
	txn := &commerce.Transaction{ID: 1, Hash: "h", Type: commerce.TypePurchase, Amount: 20, Currency: "USD", OrderID: order.ID, Order: order}
	p := a.Assemble(context.Background(), txn, nil)
	fmt.Println(p.Description, len(p.Items))
	// Output: Order #42 1
}
