package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimple(t *testing.T) {
	params := Decode("foo=12345&bar=blah&baz=&param=param")

	assert.Equal(t, []string{"12345"}, params["foo"])
	assert.Equal(t, []string{"blah"}, params["bar"])
	assert.Equal(t, []string{""}, params["baz"])
	assert.Equal(t, []string{"param"}, params["param"])
}

func TestDecodeEmpty(t *testing.T) {
	params := Decode("")
	assert.Empty(t, params)
}

func TestDecodeStrangeInputs(t *testing.T) {
	// Consecutive separators, empty keys, values containing '='.
	params := Decode("&&=a&=&&a&a=a=a=a")

	assert.Contains(t, params, "")
	assert.Equal(t, []string{"a", ""}, params[""])
	assert.Equal(t, []string{"", "a=a=a"}, params["a"])
}

func TestDecodeUTF8(t *testing.T) {
	key := "防水镜钻孔机"
	value := "árvíztűrőtükörfúró"
	raw := url.QueryEscape(key) + "=" + url.QueryEscape(value)

	params := Decode(raw)

	require.Contains(t, params, key)
	assert.Equal(t, value, params.Get(key))
}

func TestDecodeRoundTrip(t *testing.T) {
	cases := []string{
		"plain",
		"with space",
		"a=b&c",
		"100%",
		"üñîçødé",
		"日本語テキスト",
		"", // empty value survives as empty
	}
	for _, s := range cases {
		raw := "k=" + url.QueryEscape(s)
		params := Decode(raw)
		assert.Equal(t, s, params.Get("k"), "round trip of %q", s)
	}
}

func TestDecodeBrokenEscapeFallsBackToRaw(t *testing.T) {
	// "%zz" is not valid percent-encoding; the raw token must survive
	// rather than the request failing or the parameter vanishing.
	params := Decode("key=%zz")

	require.Contains(t, params, "key")
	assert.Equal(t, "%zz", params.Get("key"))
}

func TestDecodeRepeatedKeysPreserveOrder(t *testing.T) {
	params := Decode("tag=first&tag=second&tag=third")
	assert.Equal(t, []string{"first", "second", "third"}, params["tag"])
}

func TestDecodeNoEqualsYieldsEmptyValue(t *testing.T) {
	params := Decode("flag")
	assert.Equal(t, []string{""}, params["flag"])
}

func TestMerge(t *testing.T) {
	params := Decode("a=1")
	params.Merge(map[string][]string{"a": {"2"}, "b": {"3"}})

	assert.Equal(t, []string{"1", "2"}, params["a"])
	assert.Equal(t, "3", params.Get("b"))
}

func TestGetAbsentKey(t *testing.T) {
	params := Decode("a=1")
	assert.Equal(t, "", params.Get("missing"))
	assert.False(t, params.Has("missing"))
	assert.True(t, params.Has("a"))
}
