package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1,500.00", FormatUSD(1500))
	assert.Equal(t, "$0.10", FormatUSD(0.1))
	assert.Equal(t, "$12.35", FormatUSD(12.345))
	assert.Equal(t, "-$300.00", FormatUSD(-300))
}

func TestFormatUSDPtr(t *testing.T) {
	v := 180.0
	assert.Equal(t, "$180.00", FormatUSDPtr(&v))
	assert.Equal(t, Placeholder, FormatUSDPtr(nil))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "10", FormatNumber(10))
	assert.Equal(t, "150.5", FormatNumber(150.5))
}
