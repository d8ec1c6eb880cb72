package qmf

import (
	"fmt"
	"strings"
	"time"
)

// SchemaID identifies the shape of a data object.
type SchemaID struct {
	Package string
	Class   string
	Type    string
	Hash    string
}

// String renders the schema id as package:class.
func (s SchemaID) String() string {
	if s.Package == "" {
		return s.Class
	}
	return s.Package + ":" + s.Class
}

// Property is one named attribute value.
type Property struct {
	Key   string
	Value interface{}
}

// Properties is an ordered attribute list.
type Properties []Property

// Get returns the value stored under key.
func (p Properties) Get(key string) (interface{}, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return nil, false
}

// String returns the value stored under key formatted for display.
func (p Properties) String(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Keys lists the property names in order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p))
	for i, prop := range p {
		keys[i] = prop.Key
	}
	return keys
}

// Join renders the properties as "k=v, k=v".
func (p Properties) Join() string {
	parts := make([]string, len(p))
	for i, prop := range p {
		parts[i] = prop.Key + "=" + FormatValue(prop.Value)
	}
	return strings.Join(parts, ", ")
}

// Clone returns a copy that does not share backing storage.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	dup := make(Properties, len(p))
	copy(dup, p)
	return dup
}

// FormatValue renders a decoded attribute value as text.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case Properties:
		return "{" + t.Join() + "}"
	case []interface{}:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}

// Agent is a remote process exposing management data.
type Agent struct {
	Name       string
	Vendor     string
	Product    string
	Instance   string
	Epoch      int64
	Attributes Properties
}

// Label returns the display name of the agent.
func (a Agent) Label() string {
	if a.Vendor == "" && a.Product == "" {
		return a.Name
	}
	return fmt.Sprintf("%s:%s:%s", a.Vendor, a.Product, a.Instance)
}

// Data is one schema-typed record belonging to an agent.
type Data struct {
	Agent      string
	SchemaID   SchemaID
	ObjectName string
	Properties Properties
}

// Label returns the display name of the object.
func (d Data) Label() string {
	if d.ObjectName == "" {
		return d.SchemaID.String()
	}
	return d.SchemaID.String() + " " + d.ObjectName
}

// Severity ranks console events, EMERG being the most severe.
type Severity int

const (
	SeverityEmerg Severity = iota
	SeverityAlert
	SeverityCrit
	SeverityError
	SeverityWarn
	SeverityNotice
	SeverityInform
	SeverityDebug
)

func (s Severity) String() string {
	switch s {
	case SeverityEmerg:
		return "EMERG"
	case SeverityAlert:
		return "ALERT"
	case SeverityCrit:
		return "CRITICAL"
	case SeverityError:
		return "ERROR"
	case SeverityWarn:
		return "WARN"
	case SeverityNotice:
		return "NOTICE"
	case SeverityInform:
		return "INFO"
	case SeverityDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("SEV(%d)", int(s))
	}
}
