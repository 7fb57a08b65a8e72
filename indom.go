package mmv

import (
	"fmt"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/internal/hash"
	"github.com/pcpkit/mmv/internal/options"
	"github.com/pcpkit/mmv/internal/strpool"
	"github.com/pcpkit/mmv/section"
)

// Instance is one member of an instance domain: an internal id the
// agent uses and the external name callers address values by.
type Instance struct {
	ID   uint32
	Name string
}

// Indom is an instance domain, a named set of instances shared by one
// or more instance metrics. Domains are immutable once created.
type Indom struct {
	id        uint32
	instances []Instance
	byName    map[string]int
	shorthelp string
	longhelp  string
}

// NewIndom creates an instance domain from instance names, in order.
// Internal ids are derived from the names unless WithInstanceID pins
// them; the indom id is derived from the instance set unless
// WithIndomID pins it. Duplicate names, duplicate ids and empty
// domains are rejected.
func NewIndom(instanceNames []string, shorthelp, longhelp string, opts ...IndomOption) (*Indom, error) {
	if len(instanceNames) == 0 {
		return nil, fmt.Errorf("%w: no instances", errs.ErrInvalidDomain)
	}
	if err := strpool.Validate(shorthelp); err != nil {
		return nil, fmt.Errorf("short help text: %w", err)
	}
	if err := strpool.Validate(longhelp); err != nil {
		return nil, fmt.Errorf("long help text: %w", err)
	}

	d := &Indom{
		id:        hash.Indom(instanceNames),
		instances: make([]Instance, 0, len(instanceNames)),
		byName:    make(map[string]int, len(instanceNames)),
		shorthelp: shorthelp,
		longhelp:  longhelp,
	}

	for _, name := range instanceNames {
		if err := validInstanceName(name); err != nil {
			return nil, err
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate instance %q", errs.ErrInvalidDomain, name)
		}
		d.byName[name] = len(d.instances)
		d.instances = append(d.instances, Instance{ID: hash.Instance(name), Name: name})
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	seen := make(map[uint32]string, len(d.instances))
	for _, in := range d.instances {
		if prev, dup := seen[in.ID]; dup {
			return nil, fmt.Errorf("%w: instances %q and %q share internal id %d", errs.ErrInvalidDomain, prev, in.Name, in.ID)
		}
		seen[in.ID] = in.Name
	}

	return d, nil
}

func validInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty instance name", errs.ErrInvalidDomain)
	}
	if len(name) > section.NameMaxLen {
		return fmt.Errorf("%w: instance %q longer than %d bytes", errs.ErrInvalidDomain, name, section.NameMaxLen)
	}
	if strpool.Validate(name) != nil {
		return fmt.Errorf("%w: instance %q is not valid UTF-8", errs.ErrInvalidDomain, name)
	}

	return nil
}

// ID returns the indom id.
func (d *Indom) ID() uint32 { return d.id }

// InstanceCount returns the number of instances in the domain.
func (d *Indom) InstanceCount() int { return len(d.instances) }

// Instances returns the domain's instances in declaration order.
func (d *Indom) Instances() []Instance {
	out := make([]Instance, len(d.instances))
	copy(out, d.instances)

	return out
}

// HasInstance reports whether name is a member of the domain.
func (d *Indom) HasInstance(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// ShortHelp returns the domain's one-line help text.
func (d *Indom) ShortHelp() string { return d.shorthelp }

// LongHelp returns the domain's long help text.
func (d *Indom) LongHelp() string { return d.longhelp }

// IndomOption configures optional instance-domain attributes.
type IndomOption = options.Option[*Indom]

// WithIndomID pins the domain's indom id instead of deriving it from
// the instance names. Indom ids occupy 22 bits.
func WithIndomID(id uint32) IndomOption {
	return options.New(func(d *Indom) error {
		if id >= 1<<section.IndomBits {
			return fmt.Errorf("%w: indom id %d exceeds %d bits", errs.ErrInvalidDomain, id, section.IndomBits)
		}
		d.id = id

		return nil
	})
}

// WithInstanceID pins the internal id of one instance instead of
// deriving it from the name.
func WithInstanceID(name string, id uint32) IndomOption {
	return options.New(func(d *Indom) error {
		i, ok := d.byName[name]
		if !ok {
			return fmt.Errorf("%w: %q is not an instance of the domain", errs.ErrInvalidDomain, name)
		}
		d.instances[i].ID = id

		return nil
	})
}
