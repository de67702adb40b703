package common

const (
	// RedisKeyLastPrice is a hash holding the most recent quote for a stock code.
	RedisKeyLastPrice = "last_price:%s"
	// RedisKeyTraderLock guards one trader per account and stock code.
	RedisKeyTraderLock = "trader_lock:%s:%s"

	DefaultStockCode = "122640"

	HeaderTradingToken = "Trading-Token"
	HeaderAPIKey       = "X-API-Key"
	SessionCookieName  = "session_id"
)
