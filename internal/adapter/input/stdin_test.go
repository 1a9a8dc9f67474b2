package input

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

func read(t *testing.T, in string) ([]model.Request, error) {
	t.Helper()
	return NewStdinAdapterWithReader(strings.NewReader(in)).Read(context.Background())
}

func TestStdinAdapter_SingleObject(t *testing.T) {
	reqs, err := read(t, `{"message": "build finished", "type": "success", "timeout_ms": 3000}`)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "build finished", reqs[0].Message)
	require.NotNil(t, reqs[0].TimeoutMS)
	assert.Equal(t, int64(3000), *reqs[0].TimeoutMS)
}

func TestStdinAdapter_ArrayAndLines(t *testing.T) {
	reqs, err := read(t, `[{"message": "a"}, {"message": "b", "action": {"caption": "Open", "link": "https://example.com"}}]`)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	require.NotNil(t, reqs[1].Action)
	assert.Equal(t, "Open", reqs[1].Action.Caption)

	reqs, err = read(t, "{\"message\": \"one\"}\n{\"message\": \"two\", \"id\": \"deploy\"}\n")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "deploy", reqs[1].ID)
}

func TestStdinAdapter_Sanitizes(t *testing.T) {
	reqs, err := read(t, `{"message": "  bell\u0007ring  "}`)
	require.NoError(t, err)
	assert.Equal(t, "bell ring", reqs[0].Message)
}

func TestStdinAdapter_Errors(t *testing.T) {
	reqs, err := read(t, "  \n")
	require.NoError(t, err)
	assert.Empty(t, reqs)

	_, err = read(t, `{"message": "x", "urgency": 2}`)
	var adapterErr *AdapterError
	require.True(t, errors.As(err, &adapterErr))
	assert.Equal(t, "stdin", adapterErr.Source)

	_, err = read(t, `[{"message": "ok"}, {"message": "bad", "type": "LOUD"}]`)
	require.ErrorAs(t, err, &adapterErr)
	assert.Contains(t, err.Error(), "request 2")
	assert.ErrorIs(t, err, model.ErrInvalidType)

	_, err = read(t, `{"message": ""}`)
	assert.ErrorIs(t, err, model.ErrEmptyMessage)
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter("")
	require.NoError(t, err)
	assert.Equal(t, "stdin", a.Name())

	_, err = NewAdapter("dunst")
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "dunst", adapterErr.Source)
}
