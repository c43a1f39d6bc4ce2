package main

import "github.com/shopspring/decimal"

func main() {
	decimal.MarshalJSONWithoutQuotes = true
	Execute()
}
