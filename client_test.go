package mmv

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pcpkit/mmv/dump"
	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/section"
	"github.com/pcpkit/mmv/units"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, name string, opts ...ClientOption) *Client {
	t.Helper()

	opts = append([]ClientOption{WithDir(t.TempDir())}, opts...)
	c, err := NewClient(name, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c
}

func TestNewClientValidatesName(t *testing.T) {
	for _, name := range []string{"myapp", "my-app_1.2", "a"} {
		_, err := NewClient(name, WithDir(t.TempDir()))
		require.NoError(t, err, "name %q", name)
	}

	for _, name := range []string{"", "has space", "path/sep", strings.Repeat("a", 64), "ünïcode"} {
		_, err := NewClient(name)
		require.ErrorIs(t, err, errs.ErrInvalidName, "name %q", name)
	}
}

func TestDefaultDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PCP_TMP_DIR", tmp)
	require.Equal(t, filepath.Join(tmp, "mmv"), DefaultDir())

	t.Setenv("PCP_TMP_DIR", filepath.Join(tmp, "does-not-exist"))
	require.Equal(t, "/tmp/mmv", DefaultDir())

	t.Setenv("PCP_TMP_DIR", "")
	require.Equal(t, "/tmp/mmv", DefaultDir())
}

func TestEmptyExport(t *testing.T) {
	c := newTestClient(t, "empty")
	require.NoError(t, c.Export())

	data, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	require.Len(t, data, section.HeaderSize)

	var hdr section.Header
	require.NoError(t, hdr.Parse(data))
	require.Zero(t, hdr.TOCCount)
	require.True(t, hdr.Published())
}

func TestSingletonCounterLayout(t *testing.T) {
	m, err := NewMetric("simple.counter", int32(42), SemCounter, CountUnit(),
		"A Simple Metric", "A Simple Metric that holds one small number",
		WithItem(725))
	require.NoError(t, err)

	c := newTestClient(t, "simple", WithClusterID(121))
	require.NoError(t, c.Export(m))

	data, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	// header + 3 TOC entries + metric + value + two help strings
	require.Len(t, data, 40+3*16+104+32+2*256)

	parsed, err := dump.ReadFile(c.Path())
	require.NoError(t, err)
	require.Equal(t, uint32(121), parsed.Header.ClusterID)
	require.Equal(t, int32(os.Getpid()), parsed.Header.PID)
	require.NotZero(t, parsed.Header.Flags&section.FlagProcess)

	off, rec, ok := parsed.MetricByName("simple.counter")
	require.True(t, ok)
	require.Equal(t, uint32(725), rec.Item)
	require.Equal(t, section.TypeInt32, rec.Type)
	require.Equal(t, section.SemCounter, rec.Sem)
	require.Equal(t, CountUnit().Packed(), rec.Unit)
	require.Equal(t, int32(-1), rec.Indom)

	short, ok := parsed.StringAt(rec.ShortHelpOffset)
	require.True(t, ok)
	require.Equal(t, "A Simple Metric", short)

	vals := parsed.ValuesOf(off)
	require.Len(t, vals, 1)
	require.Equal(t, uint64(42), vals[0].Value)

	// the value cell is the little-endian encoding of 42
	valOff := dump.SortedOffsets(parsed.Values)[0]
	require.Equal(t, []byte{0x2A, 0, 0, 0, 0, 0, 0, 0}, data[valOff:valOff+8])
}

func TestGaugeUpdate(t *testing.T) {
	m, err := NewMetric("gauge", 1.5, SemInstant, units.New(), "", "")
	require.NoError(t, err)

	c := newTestClient(t, "gauge")
	require.NoError(t, c.Export(m))

	require.NoError(t, m.Set(3.0))

	data, err := os.ReadFile(c.Path())
	require.NoError(t, err)

	parsed, err := dump.Parse(data)
	require.NoError(t, err)
	valOff := dump.SortedOffsets(parsed.Values)[0]
	bits := binary.LittleEndian.Uint64(data[valOff : valOff+8])
	require.Equal(t, 3.0, math.Float64frombits(bits))

	got, err := c.Get(m.Item(), "")
	require.NoError(t, err)
	require.Equal(t, 3.0, got)
}

func TestInstanceMetricExport(t *testing.T) {
	products, err := NewIndom(
		[]string{"Anvils", "Rockets", "Giant_Rubber_Bands"},
		"Acme products", "Products made by the Acme Corporation")
	require.NoError(t, err)

	count, err := NewInstanceMetric(products, "products.count", uint64(0),
		SemCounter, CountUnit(), "Products built", "")
	require.NoError(t, err)

	c := newTestClient(t, "acme")
	require.NoError(t, c.Export(count))

	require.NoError(t, count.Set("Rockets", 7))
	require.ErrorIs(t, count.Set("Missiles", 1), errs.ErrUnknownInstance)

	parsed, err := dump.ReadFile(c.Path())
	require.NoError(t, err)

	require.Len(t, parsed.Indoms, 1)
	require.Len(t, parsed.Instances, 3)
	require.Len(t, parsed.Values, 3)

	// only the Rockets slot moved
	for _, off := range dump.SortedOffsets(parsed.Values) {
		val := parsed.Values[off]
		inst := parsed.Instances[val.InstanceOffset]
		if inst.Name == "Rockets" {
			require.Equal(t, uint64(7), val.Value)
		} else {
			require.Zero(t, val.Value)
		}
	}

	// indom record counts its instances
	for _, indom := range parsed.Indoms {
		require.Equal(t, uint32(3), indom.InstanceCount)
	}
}

func TestStringValueSwap(t *testing.T) {
	m, err := NewMetric("color", "hello", SemDiscrete, units.New(), "", "")
	require.NoError(t, err)

	c := newTestClient(t, "strings")
	require.NoError(t, c.Export(m))

	parsed, err := dump.ReadFile(c.Path())
	require.NoError(t, err)
	valOff := dump.SortedOffsets(parsed.Values)[0]
	primary := parsed.Values[valOff].Value
	shadow := parsed.Values[valOff].Extra
	require.NotZero(t, primary)
	require.Equal(t, primary+section.StringSize, shadow)

	readRegion := func(data []byte, off uint64) string {
		var s section.String
		require.NoError(t, s.Parse(data[off:off+section.StringSize]))
		return s.Value
	}

	data, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	require.Equal(t, "hello", readRegion(data, primary))

	// first update lands in the shadow region and swings the pointer
	require.NoError(t, m.Set("world"))
	data, err = os.ReadFile(c.Path())
	require.NoError(t, err)
	require.Equal(t, shadow, binary.LittleEndian.Uint64(data[valOff:valOff+8]))
	require.Equal(t, "world", readRegion(data, shadow))
	// the no-longer-referenced region still holds the previous payload
	require.Equal(t, "hello", readRegion(data, primary))

	// second update swings back
	require.NoError(t, m.Set("hello again"))
	data, err = os.ReadFile(c.Path())
	require.NoError(t, err)
	require.Equal(t, primary, binary.LittleEndian.Uint64(data[valOff:valOff+8]))
	require.Equal(t, "hello again", readRegion(data, primary))
	require.Equal(t, "world", readRegion(data, shadow))

	got, err := c.Get(m.Item(), "")
	require.NoError(t, err)
	require.Equal(t, "hello again", got)
}

func TestGenerationPublished(t *testing.T) {
	dir := t.TempDir()

	c1, err := NewClient("gen", WithDir(dir))
	require.NoError(t, err)
	require.NoError(t, c1.Export())
	gen1 := c1.Generation()
	require.NotZero(t, gen1)

	parsed, err := dump.ReadFile(c1.Path())
	require.NoError(t, err)
	require.Equal(t, gen1, parsed.Header.Gen1)
	require.Equal(t, gen1, parsed.Header.Gen2)
	require.NoError(t, c1.Close())

	// a re-export of the same path within the same second still moves
	// the generation forward
	c2, err := NewClient("gen", WithDir(dir))
	require.NoError(t, err)
	defer c2.Close()
	require.NoError(t, c2.Export())
	require.Greater(t, c2.Generation(), gen1)
}

func TestExportIsOnce(t *testing.T) {
	c := newTestClient(t, "once")
	require.NoError(t, c.Export())
	require.ErrorIs(t, c.Export(), errs.ErrExportFailed)
}

func TestExportRejectsCollisions(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		a, err := NewMetric("same.name", int32(0), SemInstant, units.New(), "", "", WithItem(1))
		require.NoError(t, err)
		b, err := NewMetric("same.name", int32(0), SemInstant, units.New(), "", "", WithItem(2))
		require.NoError(t, err)

		c := newTestClient(t, "dupname")
		require.ErrorIs(t, c.Export(a, b), errs.ErrInvalidName)
	})

	t.Run("duplicate item", func(t *testing.T) {
		a, err := NewMetric("metric.one", int32(0), SemInstant, units.New(), "", "", WithItem(9))
		require.NoError(t, err)
		b, err := NewMetric("metric.two", int32(0), SemInstant, units.New(), "", "", WithItem(9))
		require.NoError(t, err)

		c := newTestClient(t, "dupitem")
		require.ErrorIs(t, c.Export(a, b), errs.ErrInvalidName)

		// nothing landed on disk
		_, err = os.Stat(c.Path())
		require.True(t, os.IsNotExist(err))
	})

	t.Run("duplicate indom id", func(t *testing.T) {
		d1, err := NewIndom([]string{"a"}, "", "", WithIndomID(5))
		require.NoError(t, err)
		d2, err := NewIndom([]string{"b"}, "", "", WithIndomID(5))
		require.NoError(t, err)

		m1, err := NewInstanceMetric(d1, "m.one", int32(0), SemInstant, units.New(), "", "")
		require.NoError(t, err)
		m2, err := NewInstanceMetric(d2, "m.two", int32(0), SemInstant, units.New(), "", "")
		require.NoError(t, err)

		c := newTestClient(t, "dupindom")
		require.ErrorIs(t, c.Export(m1, m2), errs.ErrInvalidDomain)
	})
}

func TestSharedIndom(t *testing.T) {
	d, err := NewIndom([]string{"a", "b"}, "shared", "")
	require.NoError(t, err)

	m1, err := NewInstanceMetric(d, "m.one", int32(0), SemInstant, units.New(), "", "")
	require.NoError(t, err)
	m2, err := NewInstanceMetric(d, "m.two", int32(0), SemInstant, units.New(), "", "")
	require.NoError(t, err)

	c := newTestClient(t, "shared")
	require.NoError(t, c.Export(m1, m2))

	parsed, err := dump.ReadFile(c.Path())
	require.NoError(t, err)
	// one indom, two instances, four values
	require.Len(t, parsed.Indoms, 1)
	require.Len(t, parsed.Instances, 2)
	require.Len(t, parsed.Values, 4)
}

func TestHelpTextDeduplication(t *testing.T) {
	m1, err := NewMetric("m.one", int32(0), SemInstant, units.New(), "same help", "same help")
	require.NoError(t, err)
	m2, err := NewMetric("m.two", int32(0), SemInstant, units.New(), "same help", "")
	require.NoError(t, err)

	c := newTestClient(t, "dedup")
	require.NoError(t, c.Export(m1, m2))

	parsed, err := dump.ReadFile(c.Path())
	require.NoError(t, err)
	// one record serves all three references
	require.Len(t, parsed.Strings, 1)

	for _, metric := range parsed.Metrics {
		if metric.Name == "m.two" {
			require.Zero(t, metric.LongHelpOffset)
		} else {
			require.Equal(t, metric.ShortHelpOffset, metric.LongHelpOffset)
		}
	}
}

func TestHandleTableLookups(t *testing.T) {
	m, err := NewMetric("lookup", int64(5), SemInstant, units.New(), "", "", WithItem(77))
	require.NoError(t, err)

	c := newTestClient(t, "lookup")
	require.NoError(t, c.Export(m))

	require.NoError(t, c.Set(77, "", int64(6)))
	got, err := c.Get(77, "")
	require.NoError(t, err)
	require.Equal(t, int64(6), got)

	err = c.Set(78, "", int64(1))
	require.ErrorIs(t, err, errs.ErrUnknownMetric)

	err = c.Set(77, "nope", int64(1))
	require.ErrorIs(t, err, errs.ErrUnknownInstance)

	err = c.Set(77, "", int32(1))
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestLayoutTooLarge(t *testing.T) {
	m, err := NewMetric("big", int64(0), SemInstant, units.New(), "", "")
	require.NoError(t, err)

	c := newTestClient(t, "big", WithSizeCap(64))
	require.ErrorIs(t, c.Export(m), errs.ErrLayoutTooLarge)

	_, err = os.Stat(c.Path())
	require.True(t, os.IsNotExist(err))
}

func TestCloseFreezesSlots(t *testing.T) {
	m, err := NewMetric("frozen", int64(0), SemInstant, units.New(), "", "")
	require.NoError(t, err)

	c := newTestClient(t, "frozen")
	require.NoError(t, c.Export(m))
	require.NoError(t, m.Set(1))

	require.NoError(t, c.Close())
	require.ErrorIs(t, m.Set(2), errs.ErrSlotFrozen)

	// the file stays behind
	_, err = os.Stat(c.Path())
	require.NoError(t, err)
}

func TestRemoveOnClose(t *testing.T) {
	c := newTestClient(t, "gone", WithRemoveOnClose())
	require.NoError(t, c.Export())
	require.NoError(t, c.Close())

	_, err := os.Stat(c.Path())
	require.True(t, os.IsNotExist(err))
}

func TestSettersFrozenAfterExport(t *testing.T) {
	c := newTestClient(t, "setters")
	require.NoError(t, c.SetClusterID(9))
	require.NoError(t, c.SetFlags(FlagProcess|FlagSentinel))

	require.NoError(t, c.Export())
	require.ErrorIs(t, c.SetClusterID(10), errs.ErrExportFailed)
	require.ErrorIs(t, c.SetFlags(0), errs.ErrExportFailed)
}

func TestClusterIDMasked(t *testing.T) {
	c := newTestClient(t, "mask", WithClusterID(0xFFFFFFFF))
	require.Equal(t, uint32(0xFFF), c.ClusterID())
}
