package broker

import (
	"fmt"
	"strings"
	"time"
)

// Credential is passed explicitly to every call; the client keeps no session state.
type Credential struct {
	AccessToken string
	AppKey      string
	AppSecret   string
}

func (c Credential) validate() error {
	if c.AccessToken == "" || c.AppKey == "" || c.AppSecret == "" {
		return ErrMissingCredential
	}
	return nil
}

// Token is an issued OAuth access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// UnfilledOrder is an order still open at the brokerage.
type UnfilledOrder struct {
	OrderNo      string `json:"odno"`
	StockCode    string `json:"pdno"`
	Side         string `json:"sll_buy_dvsn_cd"`
	OrderQty     string `json:"ord_qty"`
	OrderPrice   string `json:"ord_unpr"`
	RemainingQty string `json:"rmn_qty"`
	OrderTime    string `json:"ord_tmd"`
}

// splitAccount returns the 8 digit CANO and the 2 digit product code.
func splitAccount(account string) (string, string, error) {
	account = strings.TrimSpace(account)
	if len(account) < 10 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAccount, account)
	}
	return account[:8], account[len(account)-2:], nil
}

type envelope struct {
	RtCd             string `json:"rt_cd"`
	MsgCd            string `json:"msg_cd"`
	Msg1             string `json:"msg1"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type quoteResponse struct {
	Output struct {
		Price string `json:"stck_prpr"`
	} `json:"output"`
}

type unfilledOrdersResponse struct {
	Output1 []UnfilledOrder `json:"output1"`
}

type buyingPowerResponse struct {
	Output struct {
		NoCreditBuyQty string `json:"nrcvb_buy_qty"`
	} `json:"output"`
}

type balanceResponse struct {
	Output1 []struct {
		StockCode   string `json:"pdno"`
		HoldingQty  string `json:"hldg_qty"`
		StockName   string `json:"prdt_name"`
		EvaluateAmt string `json:"evlu_amt"`
	} `json:"output1"`
	Output2 []struct {
		TotalEvaluation string `json:"tot_evlu_amt"`
	} `json:"output2"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}
