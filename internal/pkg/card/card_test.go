package card

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePadding(t *testing.T) {
	// 余2补"=="，余3补"="
	b, err := Decode("QQ")
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), b)

	b, err = Decode("QUI")
	require.NoError(t, err)
	assert.Equal(t, []byte("AB"), b)
}

func TestDecodeURLSafeAlphabet(t *testing.T) {
	raw := []byte{0xfb, 0xef, 0xbe}
	urlSafe := base64.RawURLEncoding.EncodeToString(raw)
	require.Contains(t, urlSafe, "-")
	require.Contains(t, urlSafe, "_")

	b, err := Decode(urlSafe)
	require.NoError(t, err)
	assert.Equal(t, raw, b)
}

func TestDecodeSpaceAsPlus(t *testing.T) {
	// URL传输中"+"常被还原成空格
	encoded := base64.StdEncoding.EncodeToString([]byte{0xfb, 0xef, 0xbe})
	require.Contains(t, encoded, "+")
	mangled := strings.ReplaceAll(encoded, "+", " ")

	b, err := Decode(mangled)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfb, 0xef, 0xbe}, b)
}

func TestDecodeString(t *testing.T) {
	encoded := base64.RawURLEncoding.EncodeToString([]byte("b4dfe508-6a14-4e0a-8c07-bbf5ee0b0bc4"))

	s, err := DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, "b4dfe508-6a14-4e0a-8c07-bbf5ee0b0bc4", s)
}

func TestDecodeInvalid(t *testing.T) {
	// 余1的长度无法构成合法base64，字符表转换后依然报错
	_, err := Decode("AAAAB")
	assert.Error(t, err)

	_, err = Decode("AAA-_")
	assert.Error(t, err)

	_, err = Decode("not!!valid**")
	assert.Error(t, err)
}
