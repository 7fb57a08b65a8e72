package mmv

import (
	"strings"
	"testing"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/section"
	"github.com/pcpkit/mmv/units"
	"github.com/stretchr/testify/require"
)

func TestNewMetricValidatesName(t *testing.T) {
	cases := []struct {
		name       string
		metricName string
		wantErr    bool
	}{
		{"plain", "simple.counter", false},
		{"max length", strings.Repeat("a", 63), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 64), true},
		{"space", "has space", true},
		{"non-ascii", "café", true},
		{"control byte", "a\tb", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMetric(tc.metricName, int64(0), SemInstant, units.New(), "", "")
			if tc.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidName)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewMetricValidatesHelp(t *testing.T) {
	long := strings.Repeat("x", 256)

	_, err := NewMetric("m", int64(0), SemInstant, units.New(), long, "")
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = NewMetric("m", int64(0), SemInstant, units.New(), "", long)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = NewMetric("m", int64(0), SemInstant, units.New(), strings.Repeat("x", 255), "")
	require.NoError(t, err)
}

func TestNewMetricValidatesStringInitial(t *testing.T) {
	_, err := NewMetric("m", strings.Repeat("v", 256), SemDiscrete, units.New(), "", "")
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	_, err = NewMetric("m", strings.Repeat("v", 255), SemDiscrete, units.New(), "", "")
	require.NoError(t, err)
}

func TestTypeCodes(t *testing.T) {
	require.Equal(t, section.TypeInt32, typeCodeOf[int32]())
	require.Equal(t, section.TypeUint32, typeCodeOf[uint32]())
	require.Equal(t, section.TypeInt64, typeCodeOf[int64]())
	require.Equal(t, section.TypeUint64, typeCodeOf[uint64]())
	require.Equal(t, section.TypeFloat32, typeCodeOf[float32]())
	require.Equal(t, section.TypeFloat64, typeCodeOf[float64]())
	require.Equal(t, section.TypeString, typeCodeOf[string]())
}

func TestEncodeWordZeroExtends(t *testing.T) {
	require.Equal(t, uint64(0xFFFFFFFF), encodeWord(int32(-1)))
	require.Equal(t, uint64(42), encodeWord(int32(42)))
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), encodeWord(int64(-1)))
	require.Equal(t, uint64(0x3FF8000000000000), encodeWord(float64(1.5)))
}

func TestWithItem(t *testing.T) {
	m, err := NewMetric("simple.counter", int32(42), SemCounter, CountUnit(), "", "", WithItem(725))
	require.NoError(t, err)
	require.Equal(t, uint32(725), m.Item())

	_, err = NewMetric("m", int32(0), SemCounter, CountUnit(), "", "", WithItem(1024))
	require.ErrorIs(t, err, errs.ErrInvalidName)
}

func TestDefaultItemDerivedFromName(t *testing.T) {
	a, err := NewMetric("metric.a", int32(0), SemInstant, units.New(), "", "")
	require.NoError(t, err)
	b, err := NewMetric("metric.a", int32(0), SemInstant, units.New(), "", "")
	require.NoError(t, err)

	require.Equal(t, a.Item(), b.Item())
	require.Less(t, a.Item(), uint32(1024))
}

func TestSetBeforeExportStagesValue(t *testing.T) {
	m, err := NewMetric("m", int64(1), SemInstant, units.New(), "", "")
	require.NoError(t, err)

	require.NoError(t, m.Set(7))
	require.Equal(t, int64(7), m.Val())
}

func TestNewIndom(t *testing.T) {
	d, err := NewIndom([]string{"L1", "L2", "L3"}, "Caches", "Levels of CPU caches")
	require.NoError(t, err)

	require.Equal(t, 3, d.InstanceCount())
	require.True(t, d.HasInstance("L1"))
	require.False(t, d.HasInstance("L4"))
	require.Equal(t, "Caches", d.ShortHelp())

	insts := d.Instances()
	require.Equal(t, "L1", insts[0].Name)
	require.Equal(t, "L3", insts[2].Name)
}

func TestNewIndomValidation(t *testing.T) {
	_, err := NewIndom(nil, "", "")
	require.ErrorIs(t, err, errs.ErrInvalidDomain)

	_, err = NewIndom([]string{"a", "a"}, "", "")
	require.ErrorIs(t, err, errs.ErrInvalidDomain)

	_, err = NewIndom([]string{""}, "", "")
	require.ErrorIs(t, err, errs.ErrInvalidDomain)

	_, err = NewIndom([]string{strings.Repeat("i", 64)}, "", "")
	require.ErrorIs(t, err, errs.ErrInvalidDomain)
}

func TestIndomOptions(t *testing.T) {
	d, err := NewIndom([]string{"a", "b"}, "", "",
		WithIndomID(11), WithInstanceID("a", 100), WithInstanceID("b", 200))
	require.NoError(t, err)

	require.Equal(t, uint32(11), d.ID())
	insts := d.Instances()
	require.Equal(t, uint32(100), insts[0].ID)
	require.Equal(t, uint32(200), insts[1].ID)

	_, err = NewIndom([]string{"a"}, "", "", WithIndomID(1<<22))
	require.ErrorIs(t, err, errs.ErrInvalidDomain)

	_, err = NewIndom([]string{"a"}, "", "", WithInstanceID("missing", 1))
	require.ErrorIs(t, err, errs.ErrInvalidDomain)

	_, err = NewIndom([]string{"a", "b"}, "", "",
		WithInstanceID("a", 5), WithInstanceID("b", 5))
	require.ErrorIs(t, err, errs.ErrInvalidDomain)
}

func TestInstanceMetricStaging(t *testing.T) {
	d, err := NewIndom([]string{"x", "y"}, "", "")
	require.NoError(t, err)

	im, err := NewInstanceMetric(d, "pair", uint32(9), SemInstant, units.New(), "", "")
	require.NoError(t, err)

	v, err := im.Val("x")
	require.NoError(t, err)
	require.Equal(t, uint32(9), v)

	require.NoError(t, im.Set("y", 11))
	v, err = im.Val("y")
	require.NoError(t, err)
	require.Equal(t, uint32(11), v)

	_, err = im.Val("z")
	require.ErrorIs(t, err, errs.ErrUnknownInstance)
	require.ErrorIs(t, im.Set("z", 1), errs.ErrUnknownInstance)
}
