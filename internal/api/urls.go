// Package api holds the endpoint catalog for the fixed brokerage hosts.
package api

import "fmt"

const (
	BaseURL       = "https://api.robinhood.com"
	PhoenixURL    = "https://phoenix.robinhood.com"
	CryptoBaseURL = "https://nummus.robinhood.com"
)

// Auth.

func Login() string {
	return BaseURL + "/oauth2/token/"
}

func Challenge(challengeID string) string {
	return fmt.Sprintf("%s/challenge/%s/respond/", BaseURL, challengeID)
}

// Profiles.

func AccountProfile() string {
	return BaseURL + "/accounts/"
}

func AccountProfileByNumber(accountNumber string) string {
	return fmt.Sprintf("%s/accounts/%s/", BaseURL, accountNumber)
}

func BasicProfile() string {
	return BaseURL + "/user/basic_info/"
}

func InvestmentProfile() string {
	return BaseURL + "/user/investment_profile/"
}

func PortfolioProfile() string {
	return BaseURL + "/portfolios/"
}

func PortfolioProfileByNumber(accountNumber string) string {
	return fmt.Sprintf("%s/portfolios/%s/", BaseURL, accountNumber)
}

func SecurityProfile() string {
	return BaseURL + "/user/additional_info/"
}

func UserProfile() string {
	return BaseURL + "/user/"
}

func PortfolioHistoricals(accountNumber string) string {
	return fmt.Sprintf("%s/portfolios/historicals/%s/", BaseURL, accountNumber)
}

// Account.

func Positions() string {
	return BaseURL + "/positions/"
}

func Dividends() string {
	return BaseURL + "/dividends/"
}

func PhoenixAccounts() string {
	return PhoenixURL + "/accounts/unified"
}

// Stocks.

func Quotes() string {
	return BaseURL + "/quotes/"
}

func Instruments() string {
	return BaseURL + "/instruments/"
}

func Fundamentals() string {
	return BaseURL + "/fundamentals/"
}

func Historicals() string {
	return BaseURL + "/quotes/historicals/"
}

func News(symbol string) string {
	return fmt.Sprintf("%s/midlands/news/%s/", BaseURL, symbol)
}

func Ratings(symbol string) string {
	return fmt.Sprintf("%s/midlands/ratings/%s/", BaseURL, symbol)
}

func Earnings() string {
	return BaseURL + "/marketdata/earnings/"
}

func Splits(instrumentID string) string {
	return fmt.Sprintf("%s/instruments/%s/splits/", BaseURL, instrumentID)
}

func Events() string {
	return BaseURL + "/options/events/"
}

func MarketdataQuotes(stockID string) string {
	return fmt.Sprintf("%s/marketdata/quotes/%s/", BaseURL, stockID)
}

func MarketdataPricebook(stockID string) string {
	return fmt.Sprintf("%s/marketdata/pricebook/snapshots/%s/", BaseURL, stockID)
}

// Options.

func OptionChains(chainID string) string {
	return fmt.Sprintf("%s/options/chains/%s/", BaseURL, chainID)
}

func OptionInstruments() string {
	return BaseURL + "/options/instruments/"
}

// Markets.

func Markets() string {
	return BaseURL + "/markets/"
}

func MarketHours(market string, date string) string {
	return fmt.Sprintf("%s/markets/%s/hours/%s/", BaseURL, market, date)
}

func MarketTodayHours(market string) string {
	return fmt.Sprintf("%s/markets/%s/hours/", BaseURL, market)
}

func MarketCategory(tag string) string {
	return fmt.Sprintf("%s/midlands/tags/tag/%s/", BaseURL, tag)
}

func Movers() string {
	return BaseURL + "/midlands/movers/sp500/"
}

// Orders.

func Orders() string {
	return BaseURL + "/orders/"
}

func OrderByID(orderID string) string {
	return fmt.Sprintf("%s/orders/%s/", BaseURL, orderID)
}

func CancelOrder(orderID string) string {
	return fmt.Sprintf("%s/orders/%s/cancel/", BaseURL, orderID)
}

func OptionOrders() string {
	return BaseURL + "/options/orders/"
}

func OptionOrderByID(orderID string) string {
	return fmt.Sprintf("%s/options/orders/%s/", BaseURL, orderID)
}

func CancelOptionOrder(orderID string) string {
	return fmt.Sprintf("%s/options/orders/%s/cancel/", BaseURL, orderID)
}

// Crypto.

func CryptoAccounts() string {
	return CryptoBaseURL + "/accounts/"
}

func CryptoHoldings() string {
	return CryptoBaseURL + "/holdings/"
}

func CryptoCurrencyPairs() string {
	return CryptoBaseURL + "/currency_pairs/"
}

func CryptoQuote(cryptoID string) string {
	return fmt.Sprintf("%s/marketdata/forex/quotes/%s/", BaseURL, cryptoID)
}

func CryptoHistoricals(cryptoID string) string {
	return fmt.Sprintf("%s/marketdata/forex/historicals/%s/", BaseURL, cryptoID)
}

func CryptoOrders() string {
	return CryptoBaseURL + "/orders/"
}

func CryptoOrderByID(orderID string) string {
	return fmt.Sprintf("%s/orders/%s/", CryptoBaseURL, orderID)
}

func CancelCryptoOrder(orderID string) string {
	return fmt.Sprintf("%s/orders/%s/cancel/", CryptoBaseURL, orderID)
}

// OAuth refresh grant endpoint used by the sealed-cache variant.
func OAuthToken() string {
	return BaseURL + "/oauth2/token/"
}
