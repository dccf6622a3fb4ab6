package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Widget selects how a field is drawn.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetAngle
	WidgetBool
	WidgetSkip
)

var widgetNames = map[string]Widget{
	"label": WidgetLabel,
	"bar":   WidgetBar,
	"angle": WidgetAngle,
	"bool":  WidgetBool,
	"skip":  WidgetSkip,
}

func (w Widget) String() string {
	for name, v := range widgetNames {
		if v == w {
			return name
		}
	}
	return "auto"
}

// Field is one exported component field with its rendering hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// ParseTag parses an inspect struct tag of the form
// `inspect:"widget[,option:value...]"`, for example
//
//	`inspect:"bar,max:50"`
//	`inspect:"label,fmt:%.0f"`
//	`inspect:"skip"`
//
// Unknown widgets parse as WidgetAuto. Options without a colon are ignored.
func ParseTag(tag string) (Widget, map[string]string) {
	options := make(map[string]string)
	if tag == "" {
		return WidgetAuto, options
	}

	name, rest, _ := strings.Cut(tag, ",")
	widget := widgetNames[strings.TrimSpace(name)]
	for _, part := range strings.Split(rest, ",") {
		if k, v, ok := strings.Cut(strings.TrimSpace(part), ":"); ok {
			options[k] = v
		}
	}
	return widget, options
}

// fieldPlan is the parsed layout of one struct field.
type fieldPlan struct {
	index   int
	name    string
	widget  Widget
	options map[string]string
}

// plans caches field layouts per component type.
var plans sync.Map // reflect.Type -> []fieldPlan

func planFor(t reflect.Type) []fieldPlan {
	if p, ok := plans.Load(t); ok {
		return p.([]fieldPlan)
	}
	var out []fieldPlan
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		widget, options := ParseTag(sf.Tag.Get("inspect"))
		switch widget {
		case WidgetSkip:
			continue
		case WidgetAuto:
			widget = autoDetectWidget(sf.Type)
		}
		out = append(out, fieldPlan{index: i, name: sf.Name, widget: widget, options: options})
	}
	p, _ := plans.LoadOrStore(t, out)
	return p.([]fieldPlan)
}

// ExtractFields lists the drawable fields of a component struct or pointer.
// A nil pointer or non-struct yields no fields.
func ExtractFields(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	plan := planFor(v.Type())
	fields := make([]Field, len(plan))
	for i, p := range plan {
		fields[i] = Field{
			Name:    p.name,
			Value:   v.Field(p.index).Interface(),
			Widget:  p.widget,
			Options: p.options,
		}
	}
	return fields
}

// autoDetectWidget picks a widget for untagged fields.
func autoDetectWidget(t reflect.Type) Widget {
	if t.Kind() == reflect.Bool {
		return WidgetBool
	}
	return WidgetLabel
}

// FormatValue formats a field value, using fmtStr when set. Floats default
// to two decimals.
func FormatValue(value any, fmtStr string) string {
	if fmtStr != "" {
		return fmt.Sprintf(fmtStr, value)
	}
	switch v := value.(type) {
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// GetMax returns the positive max option, defaulting to 1.
func GetMax(options map[string]string) float32 {
	if m, err := strconv.ParseFloat(options["max"], 32); err == nil && m > 0 {
		return float32(m)
	}
	return 1
}

// GetFloatValue converts any numeric value to float32.
func GetFloatValue(value any) (float32, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return float32(v.Float()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float32(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float32(v.Uint()), true
	default:
		return 0, false
	}
}
