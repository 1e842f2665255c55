package payment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"organic-be/internal/logger"
	"organic-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	sslcommerzSandboxURL = "https://sandbox.sslcommerz.com"
	sslcommerzLiveURL    = "https://securepay.sslcommerz.com"

	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"

	ProviderSSLCommerz = "SSLCOMMERZ"
)

type SSLCommerzOptions struct {
	StoreID       string
	StorePassword string
	IsLive        bool
	Timeout       time.Duration
}

type sslcommerzGateway struct {
	storeID       string
	storePassword string
	baseURL       string
	httpClient    *http.Client
}

func NewSSLCommerzGateway(opts SSLCommerzOptions) Gateway {
	if opts.StoreID == "" {
		logger.L().Warn("SSLCommerz store id is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	base := sslcommerzSandboxURL
	if opts.IsLive {
		base = sslcommerzLiveURL
	}

	return &sslcommerzGateway{
		storeID:       opts.StoreID,
		storePassword: opts.StorePassword,
		baseURL:       base,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

type initResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func (g *sslcommerzGateway) InitSession(ctx context.Context, req SessionRequest) (_ *Session, err error) {
	defer metrics.ObserveGateway("init", time.Now(), &err)

	log := logger.FromCtx(ctx).With(
		zap.String("tran_id", req.TransactionID),
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	form := url.Values{}
	form.Set("store_id", g.storeID)
	form.Set("store_passwd", g.storePassword)
	form.Set("total_amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("shipping_method", "Courier")
	form.Set("product_name", "Organic products")
	form.Set("product_category", "Food")
	form.Set("product_profile", "general")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_add1", req.CustomerAddress)
	form.Set("cus_city", "Dhaka")
	form.Set("cus_postcode", "1000")
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", "01711111111")
	form.Set("ship_name", req.CustomerName)
	form.Set("ship_add1", req.CustomerAddress)
	form.Set("ship_city", "Dhaka")
	form.Set("ship_postcode", "1000")
	form.Set("ship_country", "Bangladesh")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+initPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Info("Sending session request to SSLCommerz")

	body, status, err := g.do(httpReq)
	if err != nil {
		log.Error("SSLCommerz request failed", zap.Error(err))
		return nil, err
	}
	if status != http.StatusOK {
		log.Error("SSLCommerz returned non-success status",
			zap.Int("status", status),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("%w: http %d", ErrGatewayRejected, status)
	}

	var res initResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("Failed decoding SSLCommerz response", zap.Error(err))
		return nil, fmt.Errorf("decode sslcommerz response: %w", err)
	}
	if !strings.EqualFold(res.Status, "SUCCESS") || res.GatewayPageURL == "" {
		log.Error("SSLCommerz session not created",
			zap.String("status", res.Status),
			zap.String("reason", res.FailedReason),
		)
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, res.FailedReason)
	}

	log.Info("SSLCommerz session created", zap.String("session_key", res.SessionKey))

	return &Session{GatewayPageURL: res.GatewayPageURL, SessionKey: res.SessionKey}, nil
}

func (g *sslcommerzGateway) Validate(ctx context.Context, valID string) (_ *Validation, err error) {
	defer metrics.ObserveGateway("validate", time.Now(), &err)

	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", g.storeID)
	q.Set("store_passwd", g.storePassword)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+validatePath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	body, status, err := g.do(httpReq)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: validation http %d", ErrGatewayRejected, status)
	}

	var v Validation
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode sslcommerz validation: %w", err)
	}
	if !Paid(v.Status) {
		return &v, fmt.Errorf("%w: status %s", ErrInvalidPayment, v.Status)
	}
	return &v, nil
}

// VerifyCallback checks verify_sign: the md5 of the fields named in
// verify_key plus md5(store_passwd), sorted by key and joined as a query string.
// Verification is skipped when no store password is configured.
func (g *sslcommerzGateway) VerifyCallback(form url.Values) error {
	if g.storePassword == "" {
		return nil
	}
	return VerifySign(form, g.storePassword)
}

func VerifySign(form url.Values, storePassword string) error {
	sign := form.Get("verify_sign")
	keys := form.Get("verify_key")
	if sign == "" || keys == "" {
		return ErrInvalidSignature
	}

	fields := map[string]string{}
	for _, k := range strings.Split(keys, ",") {
		fields[k] = form.Get(k)
	}
	fields["store_passwd"] = md5Hex(storePassword)

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+fields[k])
	}

	if md5Hex(strings.Join(parts, "&")) != strings.ToLower(sign) {
		return ErrInvalidSignature
	}
	return nil
}

func (g *sslcommerzGateway) do(req *http.Request) ([]byte, int, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read sslcommerz response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
