package qmf

import (
	"fmt"
	"sort"
	"time"
)

// Application property names and opcodes of the QMFv2 message protocol.
const (
	propAppID   = "x-amqp-0-10.app-id"
	propOpcode  = "qmf.opcode"
	propMethod  = "method"
	propAgent   = "qmf.agent"
	propContent = "qmf.content"
	propPartial = "partial"

	appIDQMF2 = "qmf2"

	opAgentLocateRequest  = "_agent_locate_request"
	opAgentLocateResponse = "_agent_locate_response"
	opAgentHeartbeat      = "_agent_heartbeat_indication"
	opQueryRequest        = "_query_request"
	opQueryResponse       = "_query_response"
	opMethodResponse      = "_method_response"
	opDataIndication      = "_data_indication"
	opException           = "_exception"

	contentEvent = "_event"

	whatSchemaID = "SCHEMA_ID"
	whatObject   = "OBJECT"
)

// message is the transport-neutral view of one inbound QMF message.
type message struct {
	Opcode        string
	Agent         string
	Content       string
	CorrelationID string
	Partial       bool
	Body          interface{}
}

// normalize converts decoded AMQP values into the package's value shapes:
// maps become Properties sorted by key, lists stay []interface{}.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		props := make(Properties, 0, len(t))
		for k, val := range t {
			props = append(props, Property{Key: k, Value: normalize(val)})
		}
		sortProperties(props)
		return props
	case map[interface{}]interface{}:
		props := make(Properties, 0, len(t))
		for k, val := range t {
			props = append(props, Property{Key: fmt.Sprint(k), Value: normalize(val)})
		}
		sortProperties(props)
		return props
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	default:
		return t
	}
}

func sortProperties(p Properties) {
	sort.SliceStable(p, func(i, j int) bool { return p[i].Key < p[j].Key })
}

func asProperties(v interface{}) (Properties, bool) {
	p, ok := normalize(v).(Properties)
	return p, ok
}

func asList(v interface{}) []interface{} {
	switch t := normalize(v).(type) {
	case []interface{}:
		return t
	case Properties:
		return []interface{}{t}
	}
	return nil
}

func asInt(v interface{}) int64 {
	if f, ok := toFloat(v); ok {
		return int64(f)
	}
	return 0
}

func decodeSchemaID(v interface{}) (SchemaID, bool) {
	props, ok := asProperties(v)
	if !ok {
		return SchemaID{}, false
	}
	id := SchemaID{
		Package: props.String("_package_name"),
		Class:   props.String("_class_name"),
		Type:    props.String("_type"),
		Hash:    props.String("_hash"),
	}
	if id.Package == "" && id.Class == "" {
		return SchemaID{}, false
	}
	return id, true
}

// decodeAgent builds an Agent from a heartbeat or locate-response body. The
// second result is the agent's schema-updated stamp.
func decodeAgent(name string, body interface{}) (Agent, int64, error) {
	props, ok := asProperties(body)
	if !ok {
		return Agent{}, 0, fmt.Errorf("agent %q: body is not a map", name)
	}
	values := props
	if v, ok := props.Get("_values"); ok {
		if inner, ok := v.(Properties); ok {
			values = inner
		}
	}
	if name == "" {
		name = values.String("_name")
	}
	if name == "" {
		return Agent{}, 0, fmt.Errorf("agent has no name")
	}
	agent := Agent{
		Name:       name,
		Vendor:     values.String("_vendor"),
		Product:    values.String("_product"),
		Instance:   values.String("_instance"),
		Attributes: values,
	}
	if v, ok := values.Get("_epoch"); ok {
		agent.Epoch = asInt(v)
	}
	var stamp int64
	if v, ok := values.Get("_schema_updated"); ok {
		stamp = asInt(v)
	}
	return agent, stamp, nil
}

func decodeDataItem(agent string, v interface{}) (Data, bool) {
	props, ok := asProperties(v)
	if !ok {
		return Data{}, false
	}
	raw, ok := props.Get("_values")
	if !ok {
		return Data{}, false
	}
	values, ok := raw.(Properties)
	if !ok {
		return Data{}, false
	}
	d := Data{Agent: agent, Properties: values}
	if id, ok := props.Get("_schema_id"); ok {
		d.SchemaID, _ = decodeSchemaID(id)
	}
	if oid, ok := props.Get("_object_id"); ok {
		if oidProps, ok := oid.(Properties); ok {
			d.ObjectName = oidProps.String("_object_name")
		}
	}
	return d, true
}

// decodeQueryBody splits a query response body into schema ids and data
// objects, preserving their order.
func decodeQueryBody(agent string, body interface{}) ([]SchemaID, []Data) {
	var ids []SchemaID
	var data []Data
	for _, item := range asList(body) {
		if d, ok := decodeDataItem(agent, item); ok {
			data = append(data, d)
			continue
		}
		if id, ok := decodeSchemaID(item); ok {
			ids = append(ids, id)
		}
	}
	return ids, data
}

type eventRecord struct {
	severity  Severity
	timestamp time.Time
	data      Data
}

// decodeEventBody decodes a _data_indication carrying events. Each element
// becomes one record.
func decodeEventBody(agent string, body interface{}) []eventRecord {
	var out []eventRecord
	for _, item := range asList(body) {
		props, ok := item.(Properties)
		if !ok {
			continue
		}
		d, ok := decodeDataItem(agent, props)
		if !ok {
			continue
		}
		rec := eventRecord{severity: SeverityNotice, data: d}
		if v, ok := props.Get("_severity"); ok {
			rec.severity = Severity(asInt(v))
		}
		if v, ok := props.Get("_timestamp"); ok {
			// nanoseconds since the epoch
			rec.timestamp = time.Unix(0, asInt(v))
		}
		out = append(out, rec)
	}
	return out
}

func requestProperties(opcode string) map[string]interface{} {
	return map[string]interface{}{
		propAppID:  appIDQMF2,
		propOpcode: opcode,
		propMethod: "request",
	}
}

func schemaIDMap(id SchemaID) map[string]interface{} {
	m := map[string]interface{}{
		"_package_name": id.Package,
		"_class_name":   id.Class,
	}
	if id.Type != "" {
		m["_type"] = id.Type
	}
	if id.Hash != "" {
		m["_hash"] = id.Hash
	}
	return m
}

func schemaQueryBody() map[string]interface{} {
	return map[string]interface{}{"_what": whatSchemaID}
}

func objectQueryBody(id SchemaID) map[string]interface{} {
	return map[string]interface{}{
		"_what":      whatObject,
		"_schema_id": schemaIDMap(id),
	}
}

func agentLocateBody(pred *Predicate) map[string]interface{} {
	body := map[string]interface{}{"_what": "AGENT"}
	if where := pred.List(); where != nil {
		body["_where"] = where
	}
	return body
}
