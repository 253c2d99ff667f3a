package utils

import (
	"testing"

	"gotest.tools/assert"
)

func TestFormatRoundedUnit(t *testing.T) {
	testCases := []struct {
		Seconds int64
		Want    string
	}{
		{Seconds: 0, Want: "0s"},
		{Seconds: 59, Want: "59s"},
		{Seconds: 60, Want: "1m"},
		{Seconds: 3599, Want: "59m"},
		{Seconds: 3600, Want: "1h"},
		{Seconds: 86399, Want: "23h"},
		{Seconds: 2 * 86400, Want: "2d"},
		{Seconds: -90, Want: "1m"},
	}

	for _, tc := range testCases {
		assert.Equal(t, FormatRoundedUnit(tc.Seconds), tc.Want)
	}
}
