package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

func TestFilter_Empty(t *testing.T) {
	result := Filter(nil, FilterOptions{})
	assert.Len(t, result, 0)
}

func TestFilter_NoFilters(t *testing.T) {
	entries := []model.Entry{
		{ID: "1", Type: model.TypeInfo},
		{ID: "2", Type: model.TypeWarn},
	}

	result := Filter(entries, FilterOptions{})
	assert.Len(t, result, 2)
}

func TestFilter_ByType(t *testing.T) {
	entries := []model.Entry{
		{ID: "1", Type: model.TypeError},
		{ID: "2", Type: model.TypeInfo},
		{ID: "3", Type: model.TypeError},
	}

	result := Filter(entries, FilterOptions{Type: model.TypeError})
	assert.Len(t, result, 2)
	for _, e := range result {
		assert.Equal(t, model.TypeError, e.Type)
	}
}

func TestFilter_ByReason(t *testing.T) {
	entries := []model.Entry{
		{ID: "1", Reason: model.ReasonExpired},
		{ID: "2", Reason: model.ReasonAction},
	}

	result := Filter(entries, FilterOptions{Reason: model.ReasonAction})
	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID)
}

func TestFilter_BySince(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	entries := []model.Entry{
		{ID: "1", ClosedAt: now.Add(-30 * time.Minute).Unix()},
		{ID: "2", ClosedAt: now.Add(-2 * time.Hour).Unix()},
		{ID: "3", ClosedAt: now.Add(-5 * time.Hour).Unix()},
	}

	result := Filter(entries, FilterOptions{Since: time.Hour, Now: func() time.Time { return now }})
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)
}

func TestFilter_WithLimit(t *testing.T) {
	entries := []model.Entry{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}

	result := Filter(entries, FilterOptions{Limit: 3})
	assert.Len(t, result, 3)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		hasError bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"1h", time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"invalid", 0, true},
		{"xd", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseDuration(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseReason(t *testing.T) {
	r, err := ParseReason(" Dismissed ")
	require.NoError(t, err)
	assert.Equal(t, model.ReasonDismissed, r)

	_, err = ParseReason("evicted")
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantLen int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"single", "type=error", 1, false},
		{"compound", "type>=warn,message~disk", 2, false},
		{"regex", "message~=(?i)^saved", 1, false},
		{"closed", "closed>1h", 1, false},
		{"unknown field", "app=firefox", 0, true},
		{"bad type", "type=loud", 0, true},
		{"bad reason", "reason=evicted", 0, true},
		{"bad regex", "message~=(", 0, true},
		{"no operator", "message", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.Conditions, tt.wantLen)
		})
	}
}

func TestFilterWithExpr(t *testing.T) {
	now := time.Now()
	entries := []model.Entry{
		{ID: "1", Type: model.TypeError, Message: "Disk full", Reason: model.ReasonDismissed, ClosedAt: now.Unix()},
		{ID: "2", Type: model.TypeWarn, Message: "Disk almost full", Reason: model.ReasonExpired, ClosedAt: now.Add(-3 * time.Hour).Unix()},
		{ID: "3", Type: model.TypeInfo, Message: "Saved", Reason: model.ReasonAction, Action: "Undo", ClosedAt: now.Unix()},
		{ID: "4", Type: model.TypeSuccess, Message: "Uploaded", Reason: model.ReasonExpired, Source: "dbus", ClosedAt: now.Unix()},
	}

	tests := []struct {
		expr string
		want []string
	}{
		{"type=ERROR", []string{"1"}},
		{"type!=info", []string{"1", "2", "4"}},
		{"type>=warn", []string{"1", "2"}},
		{"type<info", []string{"4"}},
		{"message~disk", []string{"1", "2"}},
		{"message~=^Disk full$", []string{"1"}},
		{"reason=action,action~undo", []string{"3"}},
		{"source=dbus", []string{"4"}},
		{"closed>1h", []string{"1", "3", "4"}},
		{"closed<1h", []string{"2"}},
		{"type>=warn,closed>1h", []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := ParseFilter(tt.expr)
			require.NoError(t, err)

			var got []string
			for _, e := range FilterWithExpr(entries, f) {
				got = append(got, e.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Len(t, FilterWithExpr(entries, nil), len(entries))
}
