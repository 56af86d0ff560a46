package ptr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	s := "test"
	p := To(s)
	assert.Equal(t, s, *p)
	assert.NotSame(t, &s, p)
}

func TestDeref(t *testing.T) {
	assert.Equal(t, int64(7), Deref(Int64(7), 0))
	assert.Equal(t, int64(-1), Deref[int64](nil, -1))
}

func TestTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, Time(now).Equal(now))
}

func TestString(t *testing.T) {
	assert.Nil(t, String(""))
	assert.Equal(t, "backup.bak", *String("backup.bak"))
}
