// gatewayd wires the gateway adapter to a mock provider behind a small HTTP
// surface, for local development and integration poking. The real integration
// point is the library, not this binary.
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/diag"
	"github.com/jmauzyk/commerce-omnipay/internal/gateway"
	"github.com/jmauzyk/commerce-omnipay/internal/hook"
	"github.com/jmauzyk/commerce-omnipay/internal/metrics"
	"github.com/jmauzyk/commerce-omnipay/internal/policy"
	"github.com/jmauzyk/commerce-omnipay/internal/provider"
	providermock "github.com/jmauzyk/commerce-omnipay/internal/provider/mock"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
	"github.com/jmauzyk/commerce-omnipay/internal/webhook"
)

// siteURLBuilder builds absolute URLs under a single base URL.
type siteURLBuilder struct {
	base string
}

func (b siteURLBuilder) ActionURL(action string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return b.base + "/" + action + "?" + q.Encode()
}

func (b siteURLBuilder) SiteURL(path string) string {
	return b.base + "/" + strings.TrimPrefix(path, "/")
}

func (b siteURLBuilder) WebhookURL(params map[string]string) string {
	return b.ActionURL("webhook", params)
}

// memTransactions is an in-memory transaction store keyed by hash.
type memTransactions struct {
	mu   sync.Mutex
	byID map[string]*commerce.Transaction
	seq  int64
}

func newMemTransactions() *memTransactions {
	return &memTransactions{byID: make(map[string]*commerce.Transaction)}
}

func (m *memTransactions) create(order *commerce.Order, typ commerce.TransactionType, amount float64, curr string) *commerce.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	order.ID = m.seq
	txn := &commerce.Transaction{
		ID:       m.seq,
		Hash:     commerce.NewTransactionHash(),
		Type:     typ,
		Amount:   amount,
		Currency: curr,
		OrderID:  order.ID,
		Order:    order,
	}
	m.byID[txn.Hash] = txn
	return txn
}

func (m *memTransactions) TransactionByHash(_ context.Context, hash string) (*commerce.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.byID[hash]
	if !ok {
		return nil, fmt.Errorf("transaction %s not found", hash)
	}
	return txn, nil
}

func initTracer() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp, nil
}

func buildDiagSink() diag.Sink {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return metrics.CountingSink(diag.NewLogSink())
	}
	producer, err := diag.NewKafkaProducer(strings.Split(brokers, ","))
	if err != nil {
		log.Printf("kafka producer unavailable, falling back to log sink: %v", err)
		return metrics.CountingSink(diag.NewLogSink())
	}
	topic := os.Getenv("KAFKA_DIAG_TOPIC")
	if topic == "" {
		topic = "payments_diagnostics"
	}
	return metrics.CountingSink(diag.NewKafkaSink(producer, topic))
}

type payRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Email    string  `json:"email"`
	Card     struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Number    string `json:"number"`
		Month     int    `json:"month"`
		Year      int    `json:"year"`
		CVV       string `json:"cvv"`
	} `json:"card"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	tp, err := initTracer()
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	rules := []policy.RuleConfig{
		{Name: "amount-cap", Expression: "amount > 1000000"},
	}
	requestPolicy, err := policy.NewRequestPolicy(rules)
	if err != nil {
		log.Fatalf("failed to compile policy rules: %v", err)
	}

	gw, err := gateway.New(gateway.Config{
		ClientFactory: func() (provider.Client, error) {
			client := providermock.NewClient("dummy")
			client.Webhooks = true
			return client, nil
		},
		URLs:         siteURLBuilder{base: strings.TrimSuffix(baseURL, "/")},
		Diag:         buildDiagSink(),
		SendCartInfo: true,
		RequestHooks: []hook.RequestHook{requestPolicy},
	})
	if err != nil {
		log.Fatalf("failed to build gateway: %v", err)
	}

	txns := newMemTransactions()

	engine := gin.Default()
	engine.Use(otelgin.Middleware("gatewayd"))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/pay", func(c *gin.Context) {
		var req payRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		if req.Amount <= 0 || len(req.Currency) != 3 {
			c.JSON(400, gin.H{"error": "amount must be positive and currency a 3-letter code"})
			return
		}

		order := &commerce.Order{
			Email:      req.Email,
			Currency:   req.Currency,
			TotalPrice: req.Amount,
			CancelURL:  "/cart",
			LineItems: []commerce.LineItem{
				{ID: 1, Qty: 1, SalePrice: req.Amount, Snapshot: "Order payment"},
			},
		}
		txn := txns.create(order, commerce.TypePurchase, req.Amount, req.Currency)

		form := &commerce.PaymentForm{
			FirstName: req.Card.FirstName,
			LastName:  req.Card.LastName,
			Number:    req.Card.Number,
			Month:     req.Card.Month,
			Year:      req.Card.Year,
			CVV:       req.Card.CVV,
		}

		ctx := request.WithClientIP(c.Request.Context(), c.ClientIP())
		result, err := gw.Purchase(ctx, txn, form)
		if err != nil {
			log.Printf("purchase failed for transaction %s: %v", txn.Hash, err)
			c.JSON(502, gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"success":         result.Success,
			"reference":       result.Reference,
			"message":         result.Message,
			"transactionHash": txn.Hash,
		})
	})

	webhook.NewHandler(gw, txns).Register(engine)

	port := os.Getenv("PORT")
	if p, err := strconv.Atoi(port); err != nil || p <= 0 {
		port = "8080"
	}
	log.Printf("gatewayd listening on :%s", port)
	if err := engine.Run(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
