// SPDX-License-Identifier: MIT

package tabular_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dcgrid/tabular"
)

func TestRead_ColumnsByName(t *testing.T) {
	t.Parallel()

	in := "index, zone ,slack\nn1,Z1,1\nn2,Z2,false\n"
	tbl, err := tabular.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	col, err := tbl.Column("id", "index")
	require.NoError(t, err)
	require.Equal(t, "n2", tbl.String(1, col))

	slack, err := tbl.Column("slack")
	require.NoError(t, err)
	b, err := tbl.Bool(0, slack)
	require.NoError(t, err)
	require.True(t, b)
	b, err = tbl.Bool(1, slack)
	require.NoError(t, err)
	require.False(t, b)

	_, err = tbl.Column("capacity")
	require.True(t, errors.Is(err, tabular.ErrMissingColumn))
}

func TestRead_Empty(t *testing.T) {
	t.Parallel()

	_, err := tabular.Read(strings.NewReader(""))
	require.ErrorIs(t, err, tabular.ErrEmptyTable)
}

func TestFloat_Malformed(t *testing.T) {
	t.Parallel()

	tbl, err := tabular.Read(strings.NewReader("x\nabc\n\n1.5\n"))
	require.NoError(t, err)
	_, err = tbl.Float(0, 0)
	require.ErrorIs(t, err, tabular.ErrBadNumber)

	v, err := tbl.Float(1, 0)
	require.NoError(t, err)
	require.Equal(t, 1.5, v)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	tbl := tabular.New("cb", "co", "ram")
	tbl.Append("l1", "basecase", tabular.FormatFloat(0.1))
	require.NoError(t, tbl.WriteFile(path))

	back, err := tabular.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, tbl.Header, back.Header)
	require.Equal(t, "0.1", back.String(0, 2))

	var buf bytes.Buffer
	require.NoError(t, back.Write(&buf))
	require.Equal(t, "cb,co,ram\nl1,basecase,0.1\n", buf.String())
}
