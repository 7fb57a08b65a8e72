package section

import (
	"testing"

	"github.com/pcpkit/mmv/errs"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	original := &Header{
		Gen1:      1234567890,
		Gen2:      1234567890,
		TOCCount:  3,
		Flags:     FlagProcess | FlagSentinel,
		PID:       4242,
		ClusterID: 127,
	}

	data := original.Bytes()
	require.Len(t, data, HeaderSize)
	require.Equal(t, []byte{'M', 'M', 'V', 0}, data[0:4])

	parsed := &Header{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
	require.True(t, parsed.Published())
}

func TestHeaderParseErrors(t *testing.T) {
	t.Run("short buffer", func(t *testing.T) {
		h := &Header{}
		err := h.Parse([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrInvalidRecordSize)
	})

	t.Run("bad magic", func(t *testing.T) {
		data := (&Header{}).Bytes()
		data[0] = 'X'
		h := &Header{}
		require.ErrorIs(t, h.Parse(data), errs.ErrInvalidMagic)
	})

	t.Run("bad version", func(t *testing.T) {
		data := (&Header{}).Bytes()
		data[4] = 3
		h := &Header{}
		require.ErrorIs(t, h.Parse(data), errs.ErrInvalidVersion)
	})
}

func TestHeaderPublished(t *testing.T) {
	require.False(t, (&Header{}).Published())
	require.False(t, (&Header{Gen1: 5, Gen2: 7}).Published())
	require.True(t, (&Header{Gen1: 5, Gen2: 5}).Published())
}

func TestTOCEntryRoundTrip(t *testing.T) {
	original := &TOCEntry{Kind: KindValues, Count: 12, Offset: 328}

	data := original.Bytes()
	require.Len(t, data, TOCEntrySize)

	parsed := &TOCEntry{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
}

func TestTOCEntryParseErrors(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		e := &TOCEntry{Kind: 9, Count: 1, Offset: 40}
		parsed := &TOCEntry{}
		require.ErrorIs(t, parsed.Parse(e.Bytes()), errs.ErrInvalidTOC)
	})

	t.Run("zero offset", func(t *testing.T) {
		e := &TOCEntry{Kind: KindMetrics, Count: 1, Offset: 0}
		parsed := &TOCEntry{}
		require.ErrorIs(t, parsed.Parse(e.Bytes()), errs.ErrInvalidTOC)
	})
}

func TestIndomRoundTrip(t *testing.T) {
	original := &Indom{
		ID:              7,
		InstanceCount:   3,
		InstancesOffset: 120,
		ShortHelpOffset: 1024,
		LongHelpOffset:  0,
	}

	data := original.Bytes()
	require.Len(t, data, IndomSize)

	parsed := &Indom{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
}

func TestInstanceRoundTrip(t *testing.T) {
	original := &Instance{
		IndomOffset: 88,
		InternalID:  0xDEADBEEF,
		Name:        "Rockets",
	}

	data := original.Bytes()
	require.Len(t, data, InstanceSize)
	// pad bytes stay zero
	require.Equal(t, []byte{0, 0, 0, 0}, data[8:12])

	parsed := &Instance{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
}

func TestInstanceParseRejectsPad(t *testing.T) {
	data := (&Instance{Name: "x"}).Bytes()
	data[9] = 1

	parsed := &Instance{}
	require.ErrorIs(t, parsed.Parse(data), errs.ErrInvalidPadding)
}

func TestMetricRoundTrip(t *testing.T) {
	original := &Metric{
		Name:            "simple.counter",
		Item:            725,
		Type:            TypeInt32,
		Sem:             SemCounter,
		Unit:            1<<20 | 1<<8,
		Indom:           -1,
		ShortHelpOffset: 224,
		LongHelpOffset:  480,
	}

	data := original.Bytes()
	require.Len(t, data, MetricSize)

	parsed := &Metric{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
}

func TestMetricNegativeIndom(t *testing.T) {
	data := (&Metric{Name: "m", Indom: -1}).Bytes()
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, data[80:84])

	parsed := &Metric{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, int32(-1), parsed.Indom)
}

func TestValueRoundTrip(t *testing.T) {
	original := &Value{
		Value:          42,
		Extra:          0,
		MetricOffset:   88,
		InstanceOffset: 0,
	}

	data := original.Bytes()
	require.Len(t, data, ValueSize)

	parsed := &Value{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
}

func TestStringRoundTrip(t *testing.T) {
	original := &String{Value: "A Simple Metric"}

	data := original.Bytes()
	require.Len(t, data, StringSize)
	require.Equal(t, byte(0), data[len("A Simple Metric")])

	parsed := &String{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
}

func TestPutStringClearsTail(t *testing.T) {
	region := make([]byte, StringSize)
	PutString(region, "a longer payload")
	PutString(region, "hi")

	require.Equal(t, byte('h'), region[0])
	require.Equal(t, byte('i'), region[1])
	for i := 2; i < StringSize; i++ {
		require.Equal(t, byte(0), region[i], "byte %d not cleared", i)
	}
}

func TestTypeAndSemanticsStrings(t *testing.T) {
	require.Equal(t, "Int32", TypeInt32.String())
	require.Equal(t, "String", TypeString.String())
	require.Equal(t, "counter", SemCounter.String())
	require.Equal(t, "discrete", SemDiscrete.String())
	require.True(t, SemInstant.Valid())
	require.False(t, Semantics(2).Valid())
}
