package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streamcatalog/errors"
)

func TestPatternAllowed(t *testing.T) {
	tests := []struct {
		name     string
		allow    []string
		deny     []string
		topic    string
		expected bool
	}{
		{
			name:     "default rule includes everything",
			topic:    "orders",
			expected: true,
		},
		{
			name:     "allow exact match",
			allow:    []string{"orders"},
			topic:    "orders",
			expected: true,
		},
		{
			name:     "allow is anchored to full name",
			allow:    []string{"orders"},
			topic:    "orders-v2",
			expected: false,
		},
		{
			name:     "allow wildcard",
			allow:    []string{"orders.*"},
			topic:    "orders-v2",
			expected: true,
		},
		{
			name:     "deny wins over allow",
			allow:    []string{".*"},
			deny:     []string{"orders"},
			topic:    "orders",
			expected: false,
		},
		{
			name:     "deny internal topics",
			deny:     []string{"^_.*"},
			topic:    "_schemas",
			expected: false,
		},
		{
			name:     "case sensitive",
			allow:    []string{"Orders"},
			topic:    "orders",
			expected: false,
		},
		{
			name:     "multiple allow patterns",
			allow:    []string{"orders", "payments"},
			topic:    "payments",
			expected: true,
		},
		{
			name:     "no allow pattern matches",
			allow:    []string{"orders", "payments"},
			topic:    "shipments",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.allow, tt.deny)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Allowed(tt.topic))
		})
	}
}

func TestPatternApplyPreservesOrder(t *testing.T) {
	p, err := New([]string{"t.*"}, []string{"t3"})
	require.NoError(t, err)

	// Discovery order is preserved, not sorted.
	got := p.Apply([]string{"t2", "skip", "t1", "t3", "t9"})
	assert.Equal(t, []string{"t2", "t1", "t9"}, got)
}

func TestPatternApplyEmpty(t *testing.T) {
	p, err := New(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Apply(nil))
}

func TestNewInvalidPattern(t *testing.T) {
	_, err := New([]string{"["}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidPattern)
	assert.True(t, errors.IsInvalid(err))

	_, err = New(nil, []string{"(unclosed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidPattern)
}

func TestFilterAlgebra(t *testing.T) {
	// Filtered set equals {t : matches(allow) && !matches(deny)}.
	topics := []string{"orders", "orders-v2", "_schemas", "payments", "audit"}
	p, err := New([]string{"orders.*", "payments"}, []string{"^_.*", "orders-v2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"orders", "payments"}, p.Apply(topics))
}
