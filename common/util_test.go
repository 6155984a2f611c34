package common

import (
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarHexRoundTrip(t *testing.T) {
	var elem fr.Element
	elem.SetUint64(123456789)

	parsed, err := ScalarFromHex(ScalarToHex(&elem))
	require.NoError(t, err)
	assert.True(t, elem.Equal(parsed))
}

func TestScalarFromHexRejectsOversized(t *testing.T) {
	_, err := ScalarFromHex("0x" + strings.Repeat("ff", fr.Bytes+1))
	assert.Error(t, err)
}

func TestScalarsHexRoundTrip(t *testing.T) {
	var a, b fr.Element
	a.SetUint64(1)
	b.SetUint64(2)

	parsed, err := ScalarsFromHex(ScalarsToHex([]fr.Element{a, b}))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.True(t, parsed[0].Equal(&a))
	assert.True(t, parsed[1].Equal(&b))
}

func TestStringOrNil(t *testing.T) {
	assert.Nil(t, StringOrNil(""))
	require.NotNil(t, StringOrNil("x"))
	assert.Equal(t, "x", *StringOrNil("x"))
}
