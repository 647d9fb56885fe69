package serializer

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	emptyValue = "<empty>"
	nilValue   = "<nil>"
)

// numbers groups digits so byte counts are readable.
var numbers = message.NewPrinter(language.English)

type row struct {
	field string
	value string
}

// writeTable flattens data into FIELD/VALUE rows. Struct fields use their
// json name when tagged, slice elements are indexed as [i] and map keys are
// sorted.
func writeTable(w io.Writer, data any) error {
	var rows []row
	flatten("", reflect.ValueOf(data), &rows)
	if len(rows) == 0 {
		rows = append(rows, row{field: "", value: emptyValue})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.field, r.value)
	}
	return tw.Flush()
}

func flatten(prefix string, v reflect.Value, rows *[]row) {
	if !v.IsValid() {
		*rows = append(*rows, row{prefix, nilValue})
		return
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			*rows = append(*rows, row{prefix, nilValue})
			return
		}
		flatten(prefix, v.Elem(), rows)

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := fieldName(f)
			if name == "-" {
				continue
			}
			flatten(join(prefix, name), v.Field(i), rows)
		}

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			if prefix != "" {
				*rows = append(*rows, row{prefix, emptyValue})
			}
			return
		}
		for i := 0; i < v.Len(); i++ {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i), rows)
		}

	case reflect.Map:
		if v.Len() == 0 {
			if prefix != "" {
				*rows = append(*rows, row{prefix, emptyValue})
			}
			return
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			flatten(join(prefix, fmt.Sprint(k.Interface())), v.MapIndex(k), rows)
		}

	default:
		*rows = append(*rows, row{prefix, scalar(v)})
	}
}

func scalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numbers.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numbers.Sprintf("%d", v.Uint())
	case reflect.String:
		if v.Len() == 0 {
			return `""`
		}
		return v.String()
	default:
		return fmt.Sprint(v.Interface())
	}
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
