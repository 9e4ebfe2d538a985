// Package binance implements the Binance spot REST protocol.
//
// The package includes:
//   - Protocol: request building, canonical encoding, HMAC-SHA256 signing and response parsing
//   - BinanceExchange: an exchange.Exchange that executes those requests over HTTP
//
// Example usage:
//
//	ex, err := binance.New(core.DefaultConfig().WithCredentials(creds))
//	if err != nil {
//		return err
//	}
//	defer ex.Close()
//	account, err := ex.GetAccount(ctx, exchange.AccountParams{})
package binance
