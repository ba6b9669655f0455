package tools

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

// Checksum sums values exactly and rounds the total to the given number
// of decimal places. Non finite values are skipped and counted.
func Checksum(values []float64, places int32) (decimal.Decimal, int) {
	sum := decimal.Zero
	skipped := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			skipped++
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Round(places), skipped
}
