package prose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/autodocs/internal/model"
)

func TestHandler_RoundTrip(t *testing.T) {
	var got model.Module
	svc := ServiceFunc(func(ctx context.Context, m model.Module) (*Response, error) {
		got = m
		return &Response{
			Title: "Adder",
			Types: map[string]TypeProse{
				"Calc": {Description: "A calculator.", Methods: map[string]SymbolProse{"Sum": {Description: "Sums."}}},
			},
			Exports: map[string]string{"Add": "The adder."},
			Usage:   "add.Add(1, 2)",
		}, nil
	})
	ts := httptest.NewServer(NewHandler(svc))
	defer ts.Close()

	resp, err := NewHTTPClient(ts.URL).Generate(context.Background(), sampleModule())
	require.NoError(t, err)

	assert.Equal(t, "/src/add.go", got.Path)
	assert.Equal(t, "Add", got.Symbols[0].Name())
	assert.Equal(t, "Adder", resp.Title)
	assert.Equal(t, "Sums.", resp.Types["Calc"].Methods["Sum"].Description)
	assert.Equal(t, "The adder.", resp.Exports["Add"])
	assert.Equal(t, "add.Add(1, 2)", resp.Usage)
}

func TestHandler_ServiceFailure(t *testing.T) {
	svc := ServiceFunc(func(ctx context.Context, m model.Module) (*Response, error) {
		return nil, errors.New("model overloaded")
	})
	ts := httptest.NewServer(NewHandler(svc))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Generate(context.Background(), sampleModule())

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, ErrCodeInternal, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "model overloaded")
}

func TestHandler_NilResponse(t *testing.T) {
	svc := ServiceFunc(func(ctx context.Context, m model.Module) (*Response, error) {
		return nil, nil
	})
	ts := httptest.NewServer(NewHandler(svc))
	defer ts.Close()

	resp, err := NewHTTPClient(ts.URL).Generate(context.Background(), sampleModule())
	require.NoError(t, err)
	assert.Equal(t, &Response{}, resp)
}

func TestHandler_BadRequests(t *testing.T) {
	ts := httptest.NewServer(NewHandler(Offline{}))
	defer ts.Close()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"parse error", "{", ErrCodeParse},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"prose/other"}`, ErrCodeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","id":1,"method":"prose/generate","params":[1]}`, ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpResp, err := http.Post(ts.URL, "application/json", bytes.NewBufferString(tt.body))
			require.NoError(t, err)
			defer httpResp.Body.Close()

			var resp JSONRPCResponse
			require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestOffline(t *testing.T) {
	resp, err := Offline{}.Generate(context.Background(), sampleModule())
	require.NoError(t, err)
	assert.Equal(t, &Response{}, resp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Offline{}.Generate(ctx, sampleModule())
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, context.Canceled)
}
