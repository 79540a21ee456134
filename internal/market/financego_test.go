package market

import (
	"testing"

	finance "github.com/piquette/finance-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBarToPoint(t *testing.T) {
	p := barToPoint(&finance.ChartBar{
		Open:      decimal.NewFromFloat(10.5),
		High:      decimal.NewFromFloat(11.25),
		Low:       decimal.NewFromFloat(10),
		Close:     decimal.NewFromFloat(11),
		Volume:    4200,
		Timestamp: 1717507800,
	})

	assert.Equal(t, 10.5, p.Open)
	assert.Equal(t, 11.25, p.High)
	assert.Equal(t, 10.0, p.Low)
	assert.Equal(t, 11.0, p.Close)
	assert.Equal(t, 4200.0, p.Volume)
	assert.Equal(t, int64(1717507800), p.Date.Unix())
}
