package request

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/stretchr/testify/require"
)

type line struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity"  validate:"gt=0"`
}

type body struct {
	Items []line `json:"orderItems" validate:"required,min=1,dive"`
}

type page struct {
	Page     int `schema:"page"     validate:"gte=0"`
	PageSize int `schema:"pageSize" validate:"gte=0,max=100"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantErr   bool
	}{
		{name: "valid", body: `{"orderItems":[{"productId":"p1","quantity":2}]}`},
		{name: "empty items", body: `{"orderItems":[]}`, wantErr: true, wantField: "orderItems"},
		{name: "missing product", body: `{"orderItems":[{"quantity":2}]}`, wantErr: true, wantField: "orderItems[0].productId"},
		{name: "zero quantity", body: `{"orderItems":[{"productId":"p1","quantity":0}]}`, wantErr: true, wantField: "orderItems[0].quantity"},
		{name: "malformed", body: `{"orderItems":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst body
			err := DecodeJSON(r, &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				require.Len(t, dst.Items, 1)

				return
			}

			require.ErrorIs(t, err, apperr.ErrValidation)
			if tt.wantField != "" {
				var ve *apperr.ValidationError
				require.True(t, errors.As(err, &ve))
				require.Equal(t, tt.wantField, ve.Field)
			}
		})
	}
}

func TestDecodeQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=2&pageSize=10&unknown=x", nil)

	var p page
	require.NoError(t, DecodeQuery(r, &p))
	require.Equal(t, page{Page: 2, PageSize: 10}, p)

	r = httptest.NewRequest(http.MethodGet, "/?pageSize=500", nil)
	require.ErrorIs(t, DecodeQuery(r, &page{}), apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodGet, "/?page=abc", nil)
	require.ErrorIs(t, DecodeQuery(r, &page{}), apperr.ErrValidation)
}
