package integration_test

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TestMovieTitle    = "Dune: Part Two"
	TestScreenId      = 1
	TestCustomerName  = "Ada Lovelace"
	TestCustomerPhone = "5550100"
)

var (
	TestShowPrice = decimal.NewFromInt(150)
	TestShowTime  = time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
)
