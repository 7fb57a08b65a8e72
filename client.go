package mmv

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/pcpkit/mmv/endian"
	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/internal/layout"
	"github.com/pcpkit/mmv/internal/mapfile"
	"github.com/pcpkit/mmv/internal/options"
	"github.com/pcpkit/mmv/internal/strpool"
	"github.com/pcpkit/mmv/section"
)

var clientNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,63}$`)

// slotKey addresses one value slot in the handle table.
type slotKey struct {
	item     uint32
	instance string
}

// Client materialises a set of metrics into one MMV file.
//
// A client exports exactly once. Before export it only carries
// configuration; after export it owns the file, the mapping and the
// frozen handle table, and stays alive until Close.
type Client struct {
	name          string
	dir           string
	flags         Flag
	clusterID     uint32
	pid           int32
	sizeCap       int64
	removeOnClose bool

	mu       sync.Mutex
	exported bool
	mf       *mapfile.File
	frozen   atomic.Bool
	slots    map[slotKey]*slot
	known    map[uint32]bool
	gen      int64
}

// ClientOption configures a Client at construction.
type ClientOption = options.Option[*Client]

// WithClusterID sets the PMID cluster id. Only the low 12 bits are
// kept.
func WithClusterID(id uint32) ClientOption {
	return options.NoError(func(c *Client) {
		c.clusterID = id & (1<<section.ClusterIDBits - 1)
	})
}

// WithFlags replaces the default header flags (FlagProcess).
func WithFlags(flags Flag) ClientOption {
	return options.NoError(func(c *Client) {
		c.flags = flags
	})
}

// WithProcessID overrides the process id written to the header, for
// exporters writing on behalf of another process.
func WithProcessID(pid int) ClientOption {
	return options.NoError(func(c *Client) {
		c.pid = int32(pid)
	})
}

// WithSizeCap replaces the default 16 MiB cap on the planned file
// size.
func WithSizeCap(n int64) ClientOption {
	return options.New(func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("%w: size cap must be positive", errs.ErrLayoutTooLarge)
		}
		c.sizeCap = n

		return nil
	})
}

// WithDir overrides the target directory resolved from the
// environment.
func WithDir(dir string) ClientOption {
	return options.NoError(func(c *Client) {
		c.dir = dir
	})
}

// WithRemoveOnClose unlinks the file when the client closes. By
// default the file stays behind for agents that tolerate stale
// exporters.
func WithRemoveOnClose() ClientOption {
	return options.NoError(func(c *Client) {
		c.removeOnClose = true
	})
}

// NewClient creates a client that will export to <dir>/<name>. The
// name must match [A-Za-z0-9_.-]{1,63}.
func NewClient(name string, opts ...ClientOption) (*Client, error) {
	if !clientNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: client name %q", errs.ErrInvalidName, name)
	}

	c := &Client{
		name:    name,
		flags:   FlagProcess,
		pid:     int32(os.Getpid()),
		sizeCap: layout.DefaultSizeCap,
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.dir == "" {
		c.dir = DefaultDir()
	}

	return c, nil
}

// DefaultDir resolves the MMV directory: $PCP_TMP_DIR/mmv when
// PCP_TMP_DIR names an existing directory, /tmp/mmv otherwise. The
// directory itself is created at export.
func DefaultDir() string {
	if v := os.Getenv("PCP_TMP_DIR"); v != "" {
		if fi, err := os.Stat(v); err == nil && fi.IsDir() {
			return filepath.Join(v, "mmv")
		}
	}

	return filepath.Join("/tmp", "mmv")
}

// Path returns the file path the client exports to.
func (c *Client) Path() string {
	return filepath.Join(c.dir, c.name)
}

// ClusterID returns the PMID cluster id.
func (c *Client) ClusterID() uint32 {
	return c.clusterID
}

// Generation returns the generation published at export, zero before.
func (c *Client) Generation() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen
}

// SetClusterID changes the cluster id. Pre-export only.
func (c *Client) SetClusterID(id uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exported {
		return fmt.Errorf("%w: structure frozen after export", errs.ErrExportFailed)
	}
	c.clusterID = id & (1<<section.ClusterIDBits - 1)

	return nil
}

// SetFlags changes the header flags. Pre-export only.
func (c *Client) SetFlags(flags Flag) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exported {
		return fmt.Errorf("%w: structure frozen after export", errs.ErrExportFailed)
	}
	c.flags = flags

	return nil
}

// internHelp interns a help text, returning -1 for the empty string
// (encoded as offset zero, no record).
func internHelp(pool *strpool.Pool, s string) (int, error) {
	if s == "" {
		return -1, nil
	}

	return pool.Intern(s)
}

// Export computes the layout of the given metrics, commits the file
// atomically, maps it, and publishes it to readers via the generation
// pair. On error no file is visible at the final path and no handles
// go live.
//
// Export freezes structure: the metric set, instance domains and help
// texts cannot change afterwards. It can be called once per client.
func (c *Client) Export(ms ...Exportable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exported {
		return fmt.Errorf("%w: client already exported", errs.ErrExportFailed)
	}
	if !endian.IsNativeLittleEndian() {
		return fmt.Errorf("%w: big-endian hosts are not supported", errs.ErrExportFailed)
	}

	pool := strpool.New()
	in := &layout.Input{Pool: pool}

	descs := make([]*metricDesc, 0, len(ms))
	names := make(map[string]bool, len(ms))
	items := make(map[uint32]string, len(ms))
	indomIndex := make(map[*Indom]int)
	indomIDs := make(map[uint32]*Indom)

	for _, e := range ms {
		d := e.desc()

		if names[d.name] {
			return fmt.Errorf("%w: duplicate metric name %q", errs.ErrInvalidName, d.name)
		}
		names[d.name] = true

		if prev, dup := items[d.item]; dup {
			return fmt.Errorf("%w: metrics %q and %q share item id %d", errs.ErrInvalidName, prev, d.name, d.item)
		}
		items[d.item] = d.name

		short, err := internHelp(pool, d.shorthelp)
		if err != nil {
			return err
		}
		long, err := internHelp(pool, d.longhelp)
		if err != nil {
			return err
		}

		indomIdx := -1
		if d.indom != nil {
			idx, seen := indomIndex[d.indom]
			if !seen {
				if prev, clash := indomIDs[d.indom.id]; clash && prev != d.indom {
					return fmt.Errorf("%w: two domains share indom id %d", errs.ErrInvalidDomain, d.indom.id)
				}
				indomIDs[d.indom.id] = d.indom

				dShort, err := internHelp(pool, d.indom.shorthelp)
				if err != nil {
					return err
				}
				dLong, err := internHelp(pool, d.indom.longhelp)
				if err != nil {
					return err
				}

				li := layout.Indom{
					ID:        d.indom.id,
					ShortHelp: dShort,
					LongHelp:  dLong,
				}
				for _, inst := range d.indom.instances {
					li.Instances = append(li.Instances, layout.Instance{ID: inst.ID, Name: inst.Name})
				}

				idx = len(in.Indoms)
				in.Indoms = append(in.Indoms, li)
				indomIndex[d.indom] = idx
			}
			indomIdx = idx
		}

		lm := layout.Metric{
			Name:      d.name,
			Item:      d.item,
			Type:      d.typ,
			Sem:       d.sem,
			Unit:      d.unit.Packed(),
			Indom:     indomIdx,
			ShortHelp: short,
			LongHelp:  long,
		}

		instances := []string{""}
		if d.indom != nil {
			instances = instances[:0]
			for _, inst := range d.indom.instances {
				instances = append(instances, inst.Name)
			}
		}

		if d.typ == section.TypeString {
			for _, inst := range instances {
				pair, err := pool.AllocPair(d.stringInit(inst))
				if err != nil {
					return err
				}
				lm.InitPairs = append(lm.InitPairs, pair)
			}
		} else {
			for _, inst := range instances {
				lm.InitNumeric = append(lm.InitNumeric, d.numericInit(inst))
			}
		}

		in.Metrics = append(in.Metrics, lm)
		descs = append(descs, d)
	}

	plan, err := layout.Compute(in, c.sizeCap)
	if err != nil {
		return err
	}

	hdr := section.Header{Flags: c.flags, ClusterID: c.clusterID}
	if c.flags&FlagProcess != 0 {
		hdr.PID = c.pid
	}

	mf, err := mapfile.Commit(c.dir, c.name, plan.Materialize(in, &hdr))
	if err != nil {
		return err
	}
	data := mf.Bytes()

	c.slots = make(map[slotKey]*slot)
	c.known = make(map[uint32]bool, len(descs))
	for i, d := range descs {
		d.slots = make(map[string]*slot)

		instances := []string{""}
		if d.indom != nil {
			instances = instances[:0]
			for _, inst := range d.indom.instances {
				instances = append(instances, inst.Name)
			}
		}

		for j, inst := range instances {
			s := &slot{
				typ:    d.typ,
				off:    plan.ValueOffsets[i][j],
				data:   data,
				frozen: &c.frozen,
			}
			if d.typ == section.TypeString {
				pair := in.Metrics[i].InitPairs[j]
				s.primary = plan.PairPrimaryOffset(pair)
				s.shadow = plan.PairShadowOffset(pair)
			}
			d.slots[inst] = s
			c.slots[slotKey{item: d.item, instance: inst}] = s
		}
		c.known[d.item] = true
	}

	// Publish: generation2 first, then generation1. The atomic stores
	// order the section contents before the header flip, so a reader
	// observing a stable, nonzero, matching pair has a consistent view.
	gen := nextGeneration(mf.Path())
	atomic.StoreInt64((*int64)(unsafe.Pointer(&data[section.Gen2Offset])), gen)
	atomic.StoreInt64((*int64)(unsafe.Pointer(&data[section.Gen1Offset])), gen)

	c.gen = gen
	c.mf = mf
	c.exported = true

	return nil
}

// lookup resolves one handle from the frozen table.
func (c *Client) lookup(item uint32, instance string) (*slot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.exported || !c.known[item] {
		return nil, fmt.Errorf("%w: item %d", errs.ErrUnknownMetric, item)
	}

	s, ok := c.slots[slotKey{item: item, instance: instance}]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownInstance, instance)
	}

	return s, nil
}

// Set writes a value through the handle table. instance is "" for
// singleton metrics. The value's dynamic type must match the metric's
// declared type; prefer the typed Set methods on the metrics
// themselves, which cannot mismatch.
func (c *Client) Set(item uint32, instance string, v any) error {
	s, err := c.lookup(item, instance)
	if err != nil {
		return err
	}

	return s.set(v)
}

// Get reads a value back from the mapping through the handle table.
func (c *Client) Get(item uint32, instance string) (any, error) {
	s, err := c.lookup(item, instance)
	if err != nil {
		return nil, err
	}

	return s.get()
}

// Close freezes all value slots and unmaps the file. The file stays on
// disk unless the client was built WithRemoveOnClose. Close is
// idempotent; a client that never exported closes without effect.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mf == nil {
		return nil
	}

	c.frozen.Store(true)

	path := c.mf.Path()
	err := c.mf.Close()
	c.mf = nil

	if c.removeOnClose {
		if rerr := os.Remove(path); err == nil {
			err = rerr
		}
	}

	return err
}

// Generations must move forward even when two exports of the same path
// land within one wall-clock second.
var (
	genMu   sync.Mutex
	lastGen = make(map[string]int64)
)

func nextGeneration(path string) int64 {
	genMu.Lock()
	defer genMu.Unlock()

	gen := time.Now().Unix()
	if last, ok := lastGen[path]; ok && gen <= last {
		gen = last + 1
	}
	if gen == 0 {
		gen = 1
	}
	lastGen[path] = gen

	return gen
}
