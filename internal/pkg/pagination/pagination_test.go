package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

func TestRequestValidate(t *testing.T) {
	cfg := Config{DefaultPageSize: 20, MaxPageSize: 100}

	tests := []struct {
		name      string
		req       Request
		wantLimit int
		wantErr   bool
	}{
		{name: "default limit", req: Request{Page: 1}, wantLimit: 20},
		{name: "explicit", req: Request{Page: 3, Limit: 25}, wantLimit: 25},
		{name: "ceiling", req: Request{Page: 1, Limit: 100}, wantLimit: 100},
		{name: "above ceiling", req: Request{Page: 1, Limit: 1000}, wantErr: true},
		{name: "zero page", req: Request{Page: 0, Limit: 10}, wantErr: true},
		{name: "negative page", req: Request{Page: -1, Limit: 10}, wantErr: true},
		{name: "negative limit", req: Request{Page: 1, Limit: -5}, wantErr: true},
		{name: "offset overflow", req: Request{Page: math.MaxInt / 50, Limit: 100}, wantErr: true},
		{name: "largest page", req: Request{Page: math.MaxInt/100 + 1, Limit: 100}, wantLimit: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, req.Limit)
			assert.GreaterOrEqual(t, req.Offset(), 0)
		})
	}
}

func TestRequestValidate_CeilingInMessage(t *testing.T) {
	req := Request{Page: 1, Limit: 1000}
	err := req.Validate(Config{MaxPageSize: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100")
}

func TestNewPage(t *testing.T) {
	first := NewPage([]int{1, 2}, 5, Request{Page: 1, Limit: 2})
	assert.True(t, first.HasNextPage)
	assert.False(t, first.HasPrevPage)
	assert.Equal(t, 3, first.TotalPages)

	last := NewPage([]int{5}, 5, Request{Page: 3, Limit: 2})
	assert.False(t, last.HasNextPage)
	assert.True(t, last.HasPrevPage)

	empty := NewPage[int](nil, 0, Request{Page: 1, Limit: 20})
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.HasNextPage)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestMap(t *testing.T) {
	p := NewPage([]int{1, 2}, 4, Request{Page: 1, Limit: 2})
	doubled := Map(p, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4}, doubled.Items)
	assert.Equal(t, p.Total, doubled.Total)
	assert.True(t, doubled.HasNextPage)
}
