package parcel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripIntegersAndString(t *testing.T) {
	p := New()
	p.WriteInt32(42)
	p.WriteInt64(-1)
	p.WriteString("héllo")
	writeEnd := p.Position()

	p.SetPosition(0)

	i32, err := p.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(42), i32)

	i64, err := p.ReadInt64()
	require.NoError(t, err)
	require.Equal(t, int64(-1), i64)

	s, ok, err := p.ReadString()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "héllo", s)

	require.Equal(t, writeEnd, p.Position())
}

func TestWriteReadPrimitiveTable(t *testing.T) {
	p := New()
	p.WriteByte(7)
	p.WriteInt16(-5)
	p.WriteUint32(0xdeadbeef)
	p.WriteUint64(0x1122334455667788)
	p.WriteFloat32(3.5)
	p.WriteFloat64(-2.25)
	p.WriteBool(true)
	p.WriteBool(false)

	p.SetPosition(0)

	b, err := p.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(7), b)

	i16, err := p.ReadInt16()
	require.NoError(t, err)
	require.Equal(t, int16(-5), i16)

	u32, err := p.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := p.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x1122334455667788), u64)

	f32, err := p.ReadFloat32()
	require.NoError(t, err)
	require.Equal(t, float32(3.5), f32)

	f64, err := p.ReadFloat64()
	require.NoError(t, err)
	require.Equal(t, -2.25, f64)

	t1, err := p.ReadBool()
	require.NoError(t, err)
	require.True(t, t1)

	t2, err := p.ReadBool()
	require.NoError(t, err)
	require.False(t, t2)
}

func TestNullString(t *testing.T) {
	p := New()
	p.WriteNullString()
	p.SetPosition(0)

	s, ok, err := p.ReadString()
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "", s)
}

func TestUTF8StringInteropPath(t *testing.T) {
	p := New()
	p.WriteUTF8String("hello, world")
	p.SetPosition(0)

	s, ok, err := p.ReadUTF8String()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello, world", s)
}

func TestReadNotEnoughData(t *testing.T) {
	p := New()
	p.WriteByte(1)
	p.SetPosition(0)

	if _, err := p.ReadInt64(); err == nil {
		t.Fatal("expected not-enough-data error reading past the buffer")
	}
}

func TestOptionalInt32(t *testing.T) {
	p := New()
	var present int32 = 9
	p.WriteOptionalInt32(&present)
	p.WriteOptionalInt32(nil)
	p.SetPosition(0)

	v, err := p.ReadOptionalInt32()
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Equal(t, int32(9), *v)

	v, err = p.ReadOptionalInt32()
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSequenceRoundTrip(t *testing.T) {
	p := New()
	p.WriteInt32Sequence([]int32{1, 2, 3})
	p.WriteInt32Sequence(nil)
	p.WriteStringSequence([]string{"a", "bb"})
	p.SetPosition(0)

	ints, ok, err := p.ReadInt32Sequence()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []int32{1, 2, 3}, ints)

	ints, ok, err = p.ReadInt32Sequence()
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, ints)

	strs, ok, err := p.ReadStringSequence()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"a", "bb"}, strs)
}

// TestSizedRegionForwardCompatibility covers spec §8's forward-compatibility
// invariant: a parcel with extra trailing bytes in a sized region must still
// decode successfully, leaving the outer cursor at the region's end.
func TestSizedRegionForwardCompatibility(t *testing.T) {
	p := New()
	mark := p.BeginSizedRegion()
	p.WriteInt32(123)
	p.WriteInt32(456) // a field an older reader doesn't know about
	p.EndSizedRegion(mark)
	p.WriteInt32(999) // a sentinel after the region, to prove the cursor lands correctly

	p.SetPosition(0)

	region, err := p.BeginReadSizedRegion()
	require.NoError(t, err)

	v, err := p.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(123), v)
	require.True(t, p.RegionHasMoreData(region))

	p.EndReadSizedRegion(region)
	require.False(t, p.RegionHasMoreData(region))

	sentinel, err := p.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(999), sentinel)
}

func TestOptionalParcelableRoundTrip(t *testing.T) {
	p := New()
	err := p.WriteOptionalParcelable(true, func(inner *Parcel) error {
		inner.WriteInt32(1)
		inner.WriteString("nested")
		return nil
	})
	require.NoError(t, err)
	err = p.WriteOptionalParcelable(false, nil)
	require.NoError(t, err)

	p.SetPosition(0)

	var gotInt int32
	var gotStr string
	ok, err := p.ReadOptionalParcelable(func(inner *Parcel) error {
		var err error
		gotInt, err = inner.ReadInt32()
		if err != nil {
			return err
		}
		gotStr, _, err = inner.ReadString()
		return err
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(1), gotInt)
	require.Equal(t, "nested", gotStr)

	ok, err = p.ReadOptionalParcelable(func(inner *Parcel) error { return nil })
	require.NoError(t, err)
	require.False(t, ok)
}

// TestTaggedUnionUnknownTag covers spec §8 scenario 2: an unknown tag yields bad-value.
func TestTaggedUnionUnknownTag(t *testing.T) {
	p := New()
	p.WriteTag(99)
	p.SetPosition(0)

	tag, err := p.ReadTag()
	require.NoError(t, err)
	require.Equal(t, int32(99), tag)

	switch tag {
	case 3:
		t.Fatal("tag 99 should not match the string arm")
	default:
		err := ErrUnknownUnionTag(tag)
		require.Error(t, err)
	}
}

func TestObjectOffsetTableRoundTrip(t *testing.T) {
	p := New()
	p.WriteInt32(1) // leading field, to prove offsets aren't always zero
	err := p.WriteObject(Object{Kind: ObjectHandle, Handle: 7, Stability: 1})
	require.NoError(t, err)
	require.Len(t, p.Objects(), 1)

	offset := p.Objects()[0]
	require.LessOrEqual(t, offset+flatObjectSize, p.Len())

	p.SetPosition(0)
	_, err = p.ReadInt32()
	require.NoError(t, err)

	obj, err := p.ReadObject()
	require.NoError(t, err)
	require.Equal(t, ObjectHandle, obj.Kind)
	require.Equal(t, uint32(7), obj.Handle)
	require.Equal(t, uint32(1), obj.Stability)
}

func TestReadObjectRejectsUnrecordedOffset(t *testing.T) {
	p := New()
	p.WriteInt32(1)
	p.WriteInt32(2)
	p.SetPosition(0)

	if _, err := p.ReadObject(); err == nil {
		t.Fatal("expected error reading an object at an offset never recorded via WriteObject")
	}
}
