package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "990.00", FormatPrice(990))
	assert.Equal(t, "1 234.56", FormatPrice(1234.56))
	assert.Equal(t, "45 990.00", FormatPrice(45990))
	assert.Equal(t, "1 234 567.89", FormatPrice(1234567.89))
	assert.Equal(t, "0.00", FormatPrice(0))
	assert.Equal(t, "-1 500.00", FormatPrice(-1500))
}

func TestNewTelegramRequiresToken(t *testing.T) {
	_, err := NewTelegram("")
	assert.Error(t, err)
}
