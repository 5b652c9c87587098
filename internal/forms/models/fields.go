package models

import (
	"reflect"
	"strings"
)

// Field is one request field keyed by its JSON name.
type Field struct {
	Name     string
	Value    string
	Date     bool
	Optional bool
}

// Values flattens the form into a JSON-name keyed map.
func Values(f Form) map[string]string {
	fields := f.Fields()
	out := make(map[string]string, len(fields))
	for _, fd := range fields {
		out[fd.Name] = fd.Value
	}
	return out
}

// fieldsOf reads the string fields of a request struct pointer in
// declaration order. The form tag marks dates and optional fields.
func fieldsOf(req any) []Field {
	rv := reflect.Indirect(reflect.ValueOf(req))
	rt := rv.Type()

	out := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() || sf.Type.Kind() != reflect.String {
			continue
		}
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		fd := Field{Name: name, Value: rv.Field(i).String()}
		for _, opt := range strings.Split(sf.Tag.Get("form"), ",") {
			switch opt {
			case "date":
				fd.Date = true
			case "optional":
				fd.Optional = true
			}
		}
		out = append(out, fd)
	}
	return out
}

// trimStrings trims every string field of a request struct pointer.
func trimStrings(req any) {
	rv := reflect.Indirect(reflect.ValueOf(req))
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
