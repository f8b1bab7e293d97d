package ffi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_RoundTripWithoutCopy(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "ascii", in: "hello"},
		{name: "multibyte", in: "こんにちは, 世界"},
		{name: "single byte", in: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StringFrom(tt.in)
			assert.False(t, s.IsNull())
			assert.Equal(t, len(tt.in), s.Len)

			out := s.Into()
			assert.Equal(t, tt.in, out)
			assert.Same(t, unsafe.StringData(tt.in), unsafe.StringData(out), "storage must not be copied")
		})
	}
}

func TestString_EmptyIsNotNull(t *testing.T) {
	s := StringFrom("")
	assert.False(t, s.IsNull())
	assert.Equal(t, "", s.Into())

	null := NullString()
	assert.True(t, null.IsNull())
	assert.Equal(t, "", null.Into())
}

func TestStringFromBytes_PreservesStorage(t *testing.T) {
	buf := make([]byte, 3, 16)
	copy(buf, "abc")

	s := StringFromBytes(buf)
	assert.Equal(t, 16, s.Cap)
	assert.Equal(t, 3, s.Len)
	assert.Same(t, unsafe.SliceData(buf), s.Ptr)
	assert.Equal(t, "abc", s.Into())
}

func TestStr_BorrowAndCopy(t *testing.T) {
	owner := "borrowed view"
	v := StrFrom(owner)

	assert.Same(t, unsafe.StringData(owner), unsafe.StringData(v.Borrow()))
	copied := v.String()
	assert.Equal(t, owner, copied)
	assert.NotSame(t, unsafe.StringData(owner), unsafe.StringData(copied))

	assert.Equal(t, "", Str{}.String())
	assert.True(t, Str{}.IsNull())
}

func TestVec_RoundTripWithoutCopy(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{name: "bytes", in: []byte{1, 2, 3, 4}},
		{name: "spare capacity", in: append(make([]byte, 0, 32), 9, 8, 7)},
		{name: "empty non-nil", in: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := VecFrom(tt.in)
			out := v.Into()

			require.Equal(t, len(tt.in), len(out))
			assert.Equal(t, cap(tt.in), cap(out))
			assert.Equal(t, tt.in, out)
			assert.Same(t, unsafe.SliceData(tt.in), unsafe.SliceData(out), "storage must not be copied")
		})
	}
}

func TestVec_Nil(t *testing.T) {
	v := VecFrom[int32](nil)
	assert.Nil(t, v.Ptr)
	assert.Nil(t, v.Into())
}

func TestSlice_Borrow(t *testing.T) {
	data := []int64{10, 20, 30}
	s := SliceFrom(data)
	assert.Equal(t, 3, s.Len)
	assert.Equal(t, data, s.Borrow())
	assert.Nil(t, Slice[int64]{}.Borrow())
}

func TestOption(t *testing.T) {
	some := Some(int64(42))
	v, ok := some.Get()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
	require.NotNil(t, some.Ptr())
	assert.Equal(t, int64(42), *some.Ptr())

	none := None[int64]()
	v, ok = none.Get()
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Nil(t, none.Ptr())

	x := "present"
	assert.True(t, OptionFrom(&x).IsSome)
	assert.False(t, OptionFrom[string](nil).IsSome)
}

func TestResult(t *testing.T) {
	ok := Ok(int32(7))
	v, err := ok.Unpack()
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)

	failed := Failure[int32]("boom")
	_, err = failed.Unpack()
	require.Error(t, err)
	var resultErr *ResultError
	require.ErrorAs(t, err, &resultErr)
	assert.Equal(t, "boom", resultErr.Message)
}

func TestFuncPointer_RoundTrip(t *testing.T) {
	add := func(a, b int) int { return a + b }

	ptr := FuncPointer(add)
	require.NotNil(t, ptr)

	back := FuncFrom[func(int, int) int](ptr)
	assert.Equal(t, 5, back(2, 3))

	assert.Nil(t, FuncPointer[func()](nil))
	assert.Nil(t, FuncFrom[func()](nil))
}
