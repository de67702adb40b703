package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/pkg/config"
	"golang-stock-autotrader/pkg/logger"
)

const (
	trIDQuote          = "FHKST01010100"
	trIDDailyCCLD      = "TTTC0081R"
	trIDCancel         = "TTTC0013U"
	trIDBuyingPower    = "TTTC8908R"
	trIDBalance        = "TTTC8434R"
	trIDBuy            = "TTTC0012U"
	trIDSell           = "TTTC0011U"
	trIDToken          = "tokenP"
	orderDivisionLimit = "00"
)

// Client is the brokerage open API. Every call takes an explicit credential.
type Client interface {
	Quote(ctx context.Context, cred Credential, code string) (int64, error)
	UnfilledOrders(ctx context.Context, cred Credential, account, code string, date time.Time) ([]UnfilledOrder, error)
	CancelOrder(ctx context.Context, cred Credential, account, orderNo string) error
	PlaceOrder(ctx context.Context, cred Credential, side entity.OrderType, account, code string, quantity, price int64) error
	BuyingPower(ctx context.Context, cred Credential, account, code string, price int64) (int64, error)
	HoldingQuantity(ctx context.Context, cred Credential, account, code string) (int64, error)
	TotalEvaluation(ctx context.Context, cred Credential, account string) (int64, error)
	IssueToken(ctx context.Context, appKey, appSecret string) (*Token, error)
}

type client struct {
	cfg            config.Broker
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	tokenCache     *cache.Cache
}

// NewClient creates a brokerage client with an explicit HTTP timeout and request rate limit.
func NewClient(cfg config.Broker, log *logger.Logger) Client {
	config.ApplyBrokerEnv(&cfg, func(string) string { return "" })
	return &client{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		requestLimiter: rate.NewLimiter(rate.Limit(cfg.MaxRequestPerSecond), 1),
		tokenCache:     cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (c *client) Quote(ctx context.Context, cred Credential, code string) (int64, error) {
	const op = "quote"
	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_INPUT_ISCD", code)

	var resp quoteResponse
	if err := c.sendRequest(ctx, op, trIDQuote, http.MethodGet, "/uapi/domestic-stock/v1/quotations/inquire-price", cred, params, nil, &resp); err != nil {
		return 0, err
	}
	return parseAmount(op, trIDQuote, "stck_prpr", resp.Output.Price)
}

func (c *client) UnfilledOrders(ctx context.Context, cred Credential, account, code string, date time.Time) ([]UnfilledOrder, error) {
	const op = "unfilled_orders"
	cano, prdt, err := splitAccount(account)
	if err != nil {
		return nil, err
	}
	day := date.Format("20060102")

	params := url.Values{}
	params.Set("CANO", cano)
	params.Set("ACNT_PRDT_CD", prdt)
	params.Set("INQR_STRT_DT", day)
	params.Set("INQR_END_DT", day)
	params.Set("SLL_BUY_DVSN_CD", "00")
	params.Set("INQR_DVSN", "00")
	params.Set("PDNO", code)
	params.Set("CCLD_DVSN", "02")
	params.Set("ORD_GNO_BRNO", "")
	params.Set("ODNO", "")
	params.Set("INQR_DVSN_3", "00")
	params.Set("INQR_DVSN_1", "")
	params.Set("CTX_AREA_FK100", "")
	params.Set("CTX_AREA_NK100", "")

	var resp unfilledOrdersResponse
	if err := c.sendRequest(ctx, op, trIDDailyCCLD, http.MethodGet, "/uapi/domestic-stock/v1/trading/inquire-daily-ccld", cred, params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Output1 == nil {
		return []UnfilledOrder{}, nil
	}
	return resp.Output1, nil
}

// CancelOrder cancels the full remaining quantity of an order.
func (c *client) CancelOrder(ctx context.Context, cred Credential, account, orderNo string) error {
	cano, prdt, err := splitAccount(account)
	if err != nil {
		return err
	}
	body := map[string]string{
		"CANO":               cano,
		"ACNT_PRDT_CD":       prdt,
		"KRX_FWDG_ORD_ORGNO": "",
		"ORGN_ODNO":          orderNo,
		"ORD_DVSN":           orderDivisionLimit,
		"RVSE_CNCL_DVSN_CD":  "02",
		"ORD_QTY":            "0",
		"ORD_UNPR":           "0",
		"QTY_ALL_ORD_YN":     "Y",
	}
	return c.sendRequest(ctx, "cancel_order", trIDCancel, http.MethodPost, "/uapi/domestic-stock/v1/trading/order-rvsecncl", cred, nil, body, nil)
}

// PlaceOrder submits a cash limit order.
func (c *client) PlaceOrder(ctx context.Context, cred Credential, side entity.OrderType, account, code string, quantity, price int64) error {
	var trID string
	switch side {
	case entity.OrderTypeBuy:
		trID = trIDBuy
	case entity.OrderTypeSell:
		trID = trIDSell
	default:
		return fmt.Errorf("unsupported order side %q", side)
	}
	cano, prdt, err := splitAccount(account)
	if err != nil {
		return err
	}
	body := map[string]string{
		"CANO":         cano,
		"ACNT_PRDT_CD": prdt,
		"PDNO":         code,
		"ORD_DVSN":     orderDivisionLimit,
		"ORD_QTY":      strconv.FormatInt(quantity, 10),
		"ORD_UNPR":     strconv.FormatInt(price, 10),
	}
	return c.sendRequest(ctx, "place_order", trID, http.MethodPost, "/uapi/domestic-stock/v1/trading/order-cash", cred, nil, body, nil)
}

// BuyingPower returns how many shares can be bought at price without credit.
func (c *client) BuyingPower(ctx context.Context, cred Credential, account, code string, price int64) (int64, error) {
	const op = "buying_power"
	cano, prdt, err := splitAccount(account)
	if err != nil {
		return 0, err
	}
	params := url.Values{}
	params.Set("CANO", cano)
	params.Set("ACNT_PRDT_CD", prdt)
	params.Set("PDNO", code)
	params.Set("ORD_UNPR", strconv.FormatInt(price, 10))
	params.Set("ORD_DVSN", orderDivisionLimit)
	params.Set("CMA_EVLU_AMT_ICLD_YN", "N")
	params.Set("OVRS_ICLD_YN", "N")

	var resp buyingPowerResponse
	if err := c.sendRequest(ctx, op, trIDBuyingPower, http.MethodGet, "/uapi/domestic-stock/v1/trading/inquire-psbl-order", cred, params, nil, &resp); err != nil {
		return 0, err
	}
	return parseAmount(op, trIDBuyingPower, "nrcvb_buy_qty", resp.Output.NoCreditBuyQty)
}

// HoldingQuantity returns the held quantity of code, zero when not held.
func (c *client) HoldingQuantity(ctx context.Context, cred Credential, account, code string) (int64, error) {
	const op = "holding_quantity"
	resp, err := c.balance(ctx, op, cred, account)
	if err != nil {
		return 0, err
	}
	for _, item := range resp.Output1 {
		if item.StockCode == code {
			return parseAmount(op, trIDBalance, "hldg_qty", item.HoldingQty)
		}
	}
	return 0, nil
}

// TotalEvaluation returns the total evaluated amount of the account.
func (c *client) TotalEvaluation(ctx context.Context, cred Credential, account string) (int64, error) {
	const op = "total_evaluation"
	resp, err := c.balance(ctx, op, cred, account)
	if err != nil {
		return 0, err
	}
	if len(resp.Output2) == 0 {
		return 0, &APIError{Op: op, TrID: trIDBalance, Kind: ErrDecode, Message: "missing output2"}
	}
	return parseAmount(op, trIDBalance, "tot_evlu_amt", resp.Output2[0].TotalEvaluation)
}

func (c *client) balance(ctx context.Context, op string, cred Credential, account string) (*balanceResponse, error) {
	cano, prdt, err := splitAccount(account)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("CANO", cano)
	params.Set("ACNT_PRDT_CD", prdt)
	params.Set("AFHR_FLPR_YN", "N")
	params.Set("OFL_YN", "")
	params.Set("INQR_DVSN", "02")
	params.Set("UNPR_DVSN", "01")
	params.Set("FUND_STTL_ICLD_YN", "N")
	params.Set("FNCG_AMT_AUTO_RDPT_YN", "N")
	params.Set("PRCS_DVSN", "00")
	params.Set("CTX_AREA_FK100", "")
	params.Set("CTX_AREA_NK100", "")

	var resp balanceResponse
	if err := c.sendRequest(ctx, op, trIDBalance, http.MethodGet, "/uapi/domestic-stock/v1/trading/inquire-balance", cred, params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IssueToken requests an access token. Tokens are cached per app key until
// shortly before they expire.
func (c *client) IssueToken(ctx context.Context, appKey, appSecret string) (*Token, error) {
	const op = "issue_token"
	if appKey == "" || appSecret == "" {
		return nil, ErrMissingCredential
	}
	if cached, ok := c.tokenCache.Get(appKey); ok {
		return cached.(*Token), nil
	}

	body := map[string]string{
		"grant_type": "client_credentials",
		"appkey":     appKey,
		"appsecret":  appSecret,
	}
	raw, err := c.do(ctx, op, trIDToken, http.MethodPost, "/oauth2/tokenP", nil, nil, body)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &APIError{Op: op, TrID: trIDToken, Kind: ErrDecode, Err: err}
	}
	if resp.AccessToken == "" {
		return nil, &APIError{Op: op, TrID: trIDToken, Kind: ErrRejected, Code: resp.ErrorCode, Message: resp.ErrorDescription}
	}

	lifetime := time.Duration(resp.ExpiresIn) * time.Second
	token := &Token{
		AccessToken: resp.AccessToken,
		ExpiresAt:   time.Now().Add(lifetime),
	}
	if ttl := lifetime - c.cfg.TokenRefreshMargin; ttl > 0 {
		c.tokenCache.Set(appKey, token, ttl)
	}
	c.log.InfoContext(ctx, "Issued broker access token", zap.Time("expires_at", token.ExpiresAt))
	return token, nil
}

// sendRequest performs an authenticated call, checks the rt_cd envelope and decodes into out.
func (c *client) sendRequest(ctx context.Context, op, trID, method, path string, cred Credential, params url.Values, body interface{}, out interface{}) error {
	if err := cred.validate(); err != nil {
		return err
	}
	headers := map[string]string{
		"authorization": "Bearer " + cred.AccessToken,
		"appkey":        cred.AppKey,
		"appsecret":     cred.AppSecret,
		"tr_id":         trID,
		"custtype":      c.cfg.CustomerType,
	}

	raw, err := c.do(ctx, op, trID, method, path, params, headers, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Op: op, TrID: trID, Kind: ErrDecode, Err: err}
	}
	if env.RtCd != "0" {
		c.log.WarnContext(ctx, "Broker rejected request",
			zap.String("op", op),
			zap.String("tr_id", trID),
			zap.String("msg_cd", env.MsgCd),
			zap.String("msg", env.Msg1),
		)
		return &APIError{Op: op, TrID: trID, Kind: ErrRejected, Code: env.MsgCd, Message: env.Msg1}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Op: op, TrID: trID, Kind: ErrDecode, Err: err}
	}
	return nil
}

func (c *client) do(ctx context.Context, op, trID, method, path string, params url.Values, headers map[string]string, body interface{}) ([]byte, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("tr_id", trID),
		zap.String("method", method),
		zap.String("url", c.cfg.BaseURL+path),
	}

	if err := c.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		c.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, &APIError{Op: op, TrID: trID, Kind: ErrTransport, Err: err}
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", op, err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, &APIError{Op: op, TrID: trID, Kind: ErrTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		c.log.ErrorContext(ctx, "Failed to send request to broker API", fields...)
		return nil, &APIError{Op: op, TrID: trID, Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		c.log.ErrorContext(ctx, "Failed to read response body from broker API", fields...)
		return nil, &APIError{Op: op, TrID: trID, Kind: ErrTransport, Err: err}
	}

	fields = append(fields, zap.Int("status_code", resp.StatusCode), zap.Duration("latency", time.Since(start)))
	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "Received non-OK response from broker API", fields...)
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			if env.RtCd != "" && env.RtCd != "0" {
				return nil, &APIError{Op: op, TrID: trID, Kind: ErrRejected, Code: env.MsgCd, Message: env.Msg1}
			}
			if env.ErrorCode != "" {
				return nil, &APIError{Op: op, TrID: trID, Kind: ErrRejected, Code: env.ErrorCode, Message: env.ErrorDescription}
			}
		}
		return nil, &APIError{Op: op, TrID: trID, Kind: ErrTransport, Code: strconv.Itoa(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
	}

	c.log.DebugContext(ctx, "Broker API call completed", fields...)
	return raw, nil
}

func parseAmount(op, trID, field, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, &APIError{Op: op, TrID: trID, Kind: ErrDecode, Message: "missing " + field}
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &APIError{Op: op, TrID: trID, Kind: ErrDecode, Message: "invalid " + field, Err: err}
	}
	return n, nil
}
