// Package amltest provides a scriptable fake aml.Context for acpi package
// tests, plus a YAML fixture format for describing canned namespace
// contents and method responses without hand-building aml.Value literals
// in every test.
//
// Grounded on gopheros/device/acpi/acpi_test.go's style of injecting
// canned responses via package-level fakes; the YAML loader itself follows
// tinyrange-cc's use of gopkg.in/yaml.v3 for declarative fixture data
// (tinyrange-cc/go.mod).
package amltest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alnyan/acpi-system/aml"
)

// Invocation records one InvokeMethod call, for assertions about call order
// and arguments (e.g. that \_PTS was invoked with the sleep state integer).
type Invocation struct {
	Path string
	Args aml.Args
}

// Context is a fake aml.Context with canned per-path responses. The zero
// value has an empty namespace; use New or Load to populate one.
type Context struct {
	Objects      map[string]aml.Value
	Methods      map[string]aml.Value
	MethodErrors map[string]error

	ParsedTables [][]byte
	Invocations  []Invocation

	InitializeObjectsErr error
}

// New returns an empty fake Context.
func New() *Context {
	return &Context{
		Objects:      make(map[string]aml.Value),
		Methods:      make(map[string]aml.Value),
		MethodErrors: make(map[string]error),
	}
}

// fixture is the on-disk YAML shape loaded by Load.
type fixture struct {
	// Sleep maps a sleep-state name (e.g. "\_S5_") to its [SLP_TYPa,
	// SLP_TYPb, ...] package elements.
	Sleep map[string][]uint64 `yaml:"sleep"`

	// Methods maps a control-method path to the integer it should
	// return. Paths not listed here return a NotFoundError from
	// InvokeMethod, matching an optional/absent AML method.
	Methods map[string]uint64 `yaml:"methods"`
}

// Load reads a YAML fixture file describing \_Sx packages and control
// method results, and returns a populated Context.
func Load(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("amltest: read fixture %s: %w", path, err)
	}

	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("amltest: parse fixture %s: %w", path, err)
	}

	ctx := New()
	for name, elems := range fx.Sleep {
		pkg := make([]aml.Value, len(elems))
		for i, e := range elems {
			pkg[i] = aml.Value{Kind: aml.KindInteger, Integer: e}
		}
		ctx.Objects[name] = aml.Value{Kind: aml.KindPackage, Package: pkg}
	}
	for name, result := range fx.Methods {
		ctx.Methods[name] = aml.Value{Kind: aml.KindInteger, Integer: result}
	}

	return ctx, nil
}

// SetSleepPackage installs a \_Sx-style Package response for path.
func (c *Context) SetSleepPackage(path string, values ...uint64) {
	pkg := make([]aml.Value, len(values))
	for i, v := range values {
		pkg[i] = aml.Value{Kind: aml.KindInteger, Integer: v}
	}
	c.Objects[path] = aml.Value{Kind: aml.KindPackage, Package: pkg}
}

func (c *Context) ParseTable(bytecode []byte) error {
	c.ParsedTables = append(c.ParsedTables, bytecode)
	return nil
}

func (c *Context) InitializeObjects() error {
	return c.InitializeObjectsErr
}

func (c *Context) Lookup(path string) (aml.Value, error) {
	if v, ok := c.Objects[path]; ok {
		return v, nil
	}
	return aml.Value{}, &aml.NotFoundError{Path: path}
}

func (c *Context) InvokeMethod(path string, args aml.Args) (aml.Value, error) {
	c.Invocations = append(c.Invocations, Invocation{Path: path, Args: args})

	if err, ok := c.MethodErrors[path]; ok {
		return aml.Value{}, err
	}
	if v, ok := c.Methods[path]; ok {
		return v, nil
	}
	return aml.Value{}, &aml.NotFoundError{Path: path}
}

var _ aml.Context = (*Context)(nil)
