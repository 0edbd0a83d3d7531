package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessAndFailure(t *testing.T) {
	ok := Success("abc")
	assert.True(t, ok.IsSuccess())
	v, err := ok.Get()
	assert.NoError(t, err)
	assert.Equal(t, "abc", v)

	boom := errors.New("boom")
	bad := Failure[string](boom)
	assert.True(t, bad.IsFailure())
	assert.ErrorIs(t, bad.Err(), boom)
	assert.Equal(t, "", bad.Value())
}

func TestFailureWithNilCauseStaysFailure(t *testing.T) {
	r := Failure[int](nil)
	assert.True(t, r.IsFailure())
	assert.Error(t, r.Err())
}

func TestCallbacksAndMap(t *testing.T) {
	var seen string
	var failed error

	Success("x").
		OnSuccess(func(s string) { seen = s }).
		OnFailure(func(err error) { failed = err })
	assert.Equal(t, "x", seen)
	assert.NoError(t, failed)

	n := Map(Success("four"), func(s string) int { return len(s) })
	assert.Equal(t, 4, n.Value())

	boom := errors.New("boom")
	m := Map(Failure[string](boom), func(s string) int { return len(s) })
	assert.ErrorIs(t, m.Err(), boom)
}

func TestOf(t *testing.T) {
	assert.True(t, Of(1, nil).IsSuccess())
	assert.True(t, Of(0, errors.New("x")).IsFailure())
	assert.True(t, Ack().IsSuccess())
}
