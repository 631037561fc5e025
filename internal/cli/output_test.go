package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecal/internal/config"
)

type stringer struct{ v string }

func (s stringer) String() string { return "value=" + s.v }

func TestOutputFormatter_TextSuccessUsesStringer(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: config.FormatText, Writer: buf}

	require.NoError(t, f.Success(stringer{"x"}))
	assert.Equal(t, "value=x\n", buf.String())
}

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: config.FormatJSON, Writer: buf}

	require.NoError(t, f.Success(map[string]string{"result": "success"}))

	resp := decodeResponse(t, buf.Bytes())
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: config.FormatJSON, Writer: buf}

	require.NoError(t, f.Error(ErrCodeUsage, "bad input", map[string]int{"arg": 2}))

	resp := decodeResponse(t, buf.Bytes())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUsage, resp.Error.Code)
	assert.Equal(t, "bad input", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: config.FormatText, Writer: buf}

	require.NoError(t, f.Error(ErrCodeUsage, "bad input", "ignored"))
	assert.Equal(t, "bad input\n", buf.String())
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := WrapExitError(config.ExitCodeError, ErrCodeSettings, config.ErrSettingsRead, cause)

	assert.Equal(t, config.ErrSettingsRead+": disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, config.ExitCodeError, GetExitCode(wrapped))
	assert.Equal(t, config.ExitCodeUsage, GetExitCode(NewExitError(config.ExitCodeUsage, ErrCodeUsage, "x")))
	assert.Equal(t, config.ExitCodeError, GetExitCode(errors.New("plain")))
	assert.Equal(t, config.ExitCodeSuccess, GetExitCode(nil))
}

func TestOutputFormatter_Report(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: config.FormatJSON, Writer: buf}

	code := f.Report(&ExitError{Code: config.ExitCodeUsage, Kind: ErrCodeUsage, Message: "nope", Details: 42})

	assert.Equal(t, config.ExitCodeUsage, code)
	resp := decodeResponse(t, buf.Bytes())
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUsage, resp.Error.Code)
	assert.Equal(t, float64(42), resp.Error.Details)
}
