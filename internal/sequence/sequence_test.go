package sequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tillworks/till/internal/sequence"
)

func TestFormat(t *testing.T) {
	type testCase struct {
		name   string
		prefix string
		width  int
		n      int64
		want   string
	}

	tests := []testCase{
		{name: "Padded", prefix: "RCP", width: 6, n: 42, want: "RCP-000042"},
		{name: "First", prefix: "RCP", width: 6, n: 1, want: "RCP-000001"},
		{name: "Overflowing", prefix: "RCP", width: 4, n: 123456, want: "RCP-123456"},
		{name: "InvoiceSeries", prefix: "INV", width: 8, n: 7, want: "INV-00000007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sequence.Format(tt.prefix, tt.width, tt.n))
		})
	}
}
