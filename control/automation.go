package control

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"
)

// Parameters vary continuously and are read by the frame loop each tick.
type Parameters struct {
	Multiplier float64 `json:"multiplier"`
	AxisScale  float64 `json:"axisScale"`
	WaveScale  float64 `json:"waveScale"`
	TimeScale  float64 `json:"timeScale"`
	Damp       float64 `json:"damp"`
	Bloom      float64 `json:"bloom"`
	Spin       float64 `json:"spin"`
	Bands      int     `json:"bands"`
	Debug      bool    `json:"debug"`
}

// MaxBands bounds the number of frequency bands extracted per frame.
const MaxBands = 64

// ErrBadParameter is returned for parameter values the frame loop cannot use.
var ErrBadParameter = errors.New("bad parameter")

// Validate reports values the frame loop cannot use.
func (p *Parameters) Validate() error {
	if p.Bands < 1 || p.Bands > MaxBands {
		return fmt.Errorf("%w: bands %d not in [1, %d]", ErrBadParameter, p.Bands, MaxBands)
	}
	return nil
}

// DefaultParameters reproduce the six-object scene.
var DefaultParameters = Parameters{
	Multiplier: 1.5,
	AxisScale:  0.1,
	WaveScale:  7,
	TimeScale:  1,
	Damp:       0.88,
	Bloom:      1.9,
	Spin:       0.005,
	Bands:      8,
}

// Automation guards Parameters shared between the frame loop, device
// parameter changes and the GraphQL API.
type Automation struct {
	mu     sync.RWMutex
	params Parameters
	tags   map[string]int
	schema graphql.Schema
}

// NewAutomation returns automation starting at p.
func NewAutomation(p Parameters) (*Automation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	a := &Automation{params: p}
	a.tags = newJSONTagFieldMap(reflect.ValueOf(&a.params).Elem())
	if err := a.initGraphql(); err != nil {
		return nil, err
	}
	return a, nil
}

// Snapshot returns a copy of the current parameters.
func (a *Automation) Snapshot() Parameters {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.params
}

// Set assigns the parameter with json tag name. It reports false for
// unknown names and for values that fail Validate, leaving the parameters
// unchanged.
func (a *Automation) Set(name string, v float64) bool {
	i, ok := a.tags[name]
	if !ok || name == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.params
	f := reflect.ValueOf(&next).Elem().Field(i)
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		f.SetFloat(v)
	case reflect.Int, reflect.Int8, reflect.Int32, reflect.Int64:
		f.SetInt(int64(v))
	case reflect.Bool:
		f.SetBool(v != 0)
	default:
		return false
	}
	if err := next.Validate(); err != nil {
		return false
	}
	a.params = next
	return true
}

// Names lists the parameters Set accepts.
func (a *Automation) Names() []string {
	names := make([]string, 0, len(a.tags))
	for t := range a.tags {
		if t != "" {
			names = append(names, t)
		}
	}
	return names
}

func (a *Automation) initGraphql() error {
	paramType, paramMut := NewGraphqlType("ParamType", &a.params, &a.mu)

	rootQuery := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "RootQuery",
			Fields: graphql.Fields{
				"params": &graphql.Field{
					Type: paramType,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return &a.params, nil
					},
				},
			},
		},
	)
	rootMut := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "RootMut",
			Fields: graphql.Fields{
				"params": paramMut,
			},
		},
	)
	schema, err := graphql.NewSchema(
		graphql.SchemaConfig{
			Query:    rootQuery,
			Mutation: rootMut,
		},
	)
	if err != nil {
		return err
	}
	a.schema = schema
	return nil
}

// Query runs a GraphQL request against the parameters.
func (a *Automation) Query(query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         a.schema,
		RequestString:  query,
		VariableValues: vars,
	})
}

type validator interface {
	Validate() error
}

// NewGraphqlType builds an object type and a mutation field for the struct
// val points to, one field per json tag. lock guards val. If val has a
// Validate method, mutations that fail it are rejected as a whole.
func NewGraphqlType(name string, val interface{}, lock sync.Locker) (*graphql.Object, *graphql.Field) {
	fields := graphql.Fields{}
	inputFields := graphql.InputObjectConfigFieldMap{}

	elem := reflect.ValueOf(val).Elem()
	tagMap := newJSONTagFieldMap(elem)
	ref := elem.Type()

	resolver := func(tag string) func(graphql.ResolveParams) (interface{}, error) {
		field, ok := tagMap[tag]
		if !ok {
			panic("unknown tag: " + tag)
		}
		return func(p graphql.ResolveParams) (interface{}, error) {
			src := reflect.ValueOf(p.Source)
			if src.Kind() != reflect.Ptr || src.Elem().Type() != ref {
				return nil, fmt.Errorf("unexpected source: %#v", p.Source)
			}
			lock.Lock()
			defer lock.Unlock()
			return src.Elem().Field(field).Interface(), nil
		}
	}

	for tag, i := range tagMap {
		if tag == "" {
			continue
		}
		f := ref.Field(i)
		var typ graphql.Type
		switch f.Type.Kind() {
		case reflect.Bool:
			typ = graphql.Boolean
		case reflect.Float32, reflect.Float64:
			typ = graphql.Float
		case reflect.String:
			typ = graphql.String
		case reflect.Int, reflect.Int8, reflect.Int32, reflect.Int64:
			typ = graphql.Int
		default:
			panic(fmt.Sprint("unsupported type ", f.Type))
		}
		fields[tag] = &graphql.Field{Type: typ, Resolve: resolver(tag)}
		inputFields[tag] = &graphql.InputObjectFieldConfig{Type: typ}
	}

	paramType := graphql.NewObject(
		graphql.ObjectConfig{
			Name:   name,
			Fields: fields,
		})
	inputParamType := graphql.NewInputObject(
		graphql.InputObjectConfig{
			Name:   "input" + name,
			Fields: inputFields,
		})
	paramMut := &graphql.Field{
		Type: paramType,
		Args: graphql.FieldConfigArgument{
			"params": &graphql.ArgumentConfig{Type: inputParamType},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			params, _ := p.Args["params"].(map[string]interface{})
			lock.Lock()
			defer lock.Unlock()
			next := reflect.New(ref).Elem()
			next.Set(elem)
			for arg, val := range params {
				i, ok := tagMap[arg]
				if !ok {
					return nil, fmt.Errorf("unknown parameter %s", arg)
				}
				field := next.Field(i)
				v := reflect.ValueOf(val)
				if !v.IsValid() || !v.Type().ConvertibleTo(field.Type()) {
					return nil, fmt.Errorf("bad value for %s: %v", arg, val)
				}
				field.Set(v.Convert(field.Type()))
			}
			if vd, ok := next.Addr().Interface().(validator); ok {
				if err := vd.Validate(); err != nil {
					return nil, err
				}
			}
			elem.Set(next)
			return elem.Addr().Interface(), nil
		},
	}

	return paramType, paramMut
}

func jsonTag(f *reflect.StructField) string {
	t := f.Tag.Get("json")
	return strings.Split(t, ",")[0]
}

func newJSONTagFieldMap(ref reflect.Value) map[string]int {
	m := make(map[string]int)
	for i := 0; i < ref.NumField(); i++ {
		f := ref.Type().Field(i)
		m[jsonTag(&f)] = i
	}
	return m
}
