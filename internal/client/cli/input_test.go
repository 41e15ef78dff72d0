package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\r\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("secret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword("Enter password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), pw)
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword("Enter password", &out)
	assert.Error(t, err)
}

func TestGetOptionalText(t *testing.T) {
	var out bytes.Buffer

	got, err := GetOptionalText(rdr("\n"), "Name", "Aspirin", &out)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Contains(t, out.String(), "[Aspirin]")

	got, err = GetOptionalText(rdr("Ibuprofen\n"), "Name", "Aspirin", &out)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ibuprofen", *got)
}

func TestGetYesNo(t *testing.T) {
	tests := []struct {
		input   string
		want    *bool
		wantErr bool
	}{
		{input: "\n", want: nil},
		{input: "y\n", want: ptr(true)},
		{input: "YES\n", want: ptr(true)},
		{input: "n\n", want: ptr(false)},
		{input: "maybe\n", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(strings.TrimSpace(tc.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetYesNo(rdr(tc.input), "Active", &out)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "1"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids)

	ids, err = parseIDs([]string{"-1", "-2"})
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, -2}, ids)

	for _, args := range [][]string{nil, {"x"}, {"0"}, {"1", "b"}} {
		_, err := parseIDs(args)
		assert.ErrorIs(t, err, ErrUsage, "args %v", args)
	}

	id, err := parseID([]string{"9"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	_, err = parseID([]string{"1", "2"})
	assert.ErrorIs(t, err, ErrUsage)

	_, err = parseID([]string{"-3"})
	assert.ErrorIs(t, err, ErrUsage)
}

func ptr[T any](v T) *T { return &v }
