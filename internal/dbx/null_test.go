package dbx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullString(t *testing.T) {
	assert.False(t, NullString("").Valid)
	assert.True(t, NullString("x").Valid)

	assert.Nil(t, StringPtr(NullStringPtr(nil)))
	s := "v"
	got := StringPtr(NullStringPtr(&s))
	require.NotNil(t, got)
	assert.Equal(t, "v", *got)
}

func TestNullTime(t *testing.T) {
	assert.Nil(t, TimePtr(NullTime(nil)))
	now := time.Now()
	got := TimePtr(NullTime(&now))
	require.NotNil(t, got)
	assert.True(t, now.Equal(*got))
}

func TestStringList(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["x"]`)))
	assert.Equal(t, StringList{"x"}, l)
	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)
	require.Error(t, l.Scan(12))
	require.Error(t, l.Scan("not json"))
}

func TestNullStringList(t *testing.T) {
	v, err := NullStringList{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NullStringList{Valid: true}.Value()
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	var n NullStringList
	require.NoError(t, n.Scan(`["a"]`))
	assert.True(t, n.Valid)
	assert.Equal(t, []string{"a"}, n.List)
	require.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)
}
