// Package coverage inspects downloaded NetCDF coverage files.
package coverage

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Open reads a coverage file from disk. Callers own the Close.
func Open(path string) (api.Group, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open netcdf %s: %w", path, err)
	}
	return g, nil
}

// Attribute is one named attribute, value already rendered to text.
type Attribute struct {
	Name  string
	Value string
}

// VariableInfo describes one variable without touching its payload
// beyond measuring the shape.
type VariableInfo struct {
	Name       string
	Dimensions []string
	Shape      []int
	Units      string
	LongName   string
}

// Summary is the metadata of a coverage file: global attributes in file
// order and every variable with its axes.
type Summary struct {
	Global    []Attribute
	Variables []VariableInfo
}

// Summarize walks the group's attributes and variables. Variable order
// follows the file, the way ncdump prints it.
func Summarize(g api.Group) (*Summary, error) {
	s := &Summary{}

	if attrs := g.Attributes(); attrs != nil {
		for _, key := range attrs.Keys() {
			if val, has := attrs.Get(key); has {
				s.Global = append(s.Global, Attribute{Name: key, Value: fmt.Sprint(val)})
			}
		}
	}

	for _, name := range g.ListVariables() {
		v, err := g.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		info := VariableInfo{
			Name:       name,
			Dimensions: v.Dimensions,
			Shape:      shapeOf(v.Values),
		}
		if v.Attributes != nil {
			if u, has := v.Attributes.Get("units"); has {
				info.Units = fmt.Sprint(u)
			}
			if ln, has := v.Attributes.Get("long_name"); has {
				info.LongName = fmt.Sprint(ln)
			}
		}
		s.Variables = append(s.Variables, info)
	}
	return s, nil
}

// shapeOf measures nested slice lengths, e.g. [][]float32 of 2x3 gives
// [2 3]. Scalars give an empty shape.
func shapeOf(values interface{}) []int {
	var shape []int
	rv := reflect.ValueOf(values)
	for rv.Kind() == reflect.Slice {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	return shape
}

func (s *Summary) String() string {
	var b strings.Builder
	if len(s.Global) > 0 {
		b.WriteString("global attributes:\n")
		for _, a := range s.Global {
			fmt.Fprintf(&b, "  %s = %s\n", a.Name, a.Value)
		}
	}
	b.WriteString("variables:\n")
	for _, v := range s.Variables {
		fmt.Fprintf(&b, "  %s(%s)", v.Name, strings.Join(v.Dimensions, ", "))
		if len(v.Shape) > 0 {
			fmt.Fprintf(&b, " shape=%v", v.Shape)
		}
		if v.Units != "" {
			fmt.Fprintf(&b, " units=%q", v.Units)
		}
		if v.LongName != "" {
			fmt.Fprintf(&b, " long_name=%q", v.LongName)
		}
		b.WriteString("\n")
	}
	return b.String()
}
