package qmf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func heartbeat(name, product string, schemaStamp int64) message {
	return message{
		Opcode: opAgentHeartbeat,
		Agent:  name,
		Body: map[string]interface{}{
			"_values": map[interface{}]interface{}{
				"_vendor":         "apache.org",
				"_product":        product,
				"_instance":       "i-1",
				"_epoch":          int64(1),
				"_schema_updated": schemaStamp,
			},
		},
	}
}

func newTestTracker(t *testing.T, filter string) (*agentTracker, *time.Time) {
	t.Helper()
	now := time.Unix(1000, 0)
	tr := newAgentTracker(MustParsePredicate(filter), time.Minute, false)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestTracker_AgentAddedOnlyWhenFilterMatches(t *testing.T) {
	tr, _ := newTestTracker(t, DefaultAgentFilter)

	events := tr.handle(heartbeat("apache.org:qpidd:i-1", "qpidd", 1), false)
	require.Len(t, events, 1)
	added, ok := events[0].(AgentAdded)
	require.True(t, ok, "got %T", events[0])
	require.Equal(t, "apache.org:qpidd:i-1", added.Agent.Name)
	require.Equal(t, "qpidd", added.Agent.Product)

	require.Empty(t, tr.handle(heartbeat("apache.org:qpidd:i-1", "qpidd", 1), false), "repeat heartbeat is silent")
	require.Empty(t, tr.handle(heartbeat("other", "qmf-agent", 1), false), "filtered agent is not reported")
}

func TestTracker_SchemaStampChangeReportsUpdate(t *testing.T) {
	tr, _ := newTestTracker(t, "")
	tr.handle(heartbeat("a", "qpidd", 1), false)
	events := tr.handle(heartbeat("a", "qpidd", 2), false)
	require.Len(t, events, 1)
	require.IsType(t, SchemaUpdated{}, events[0])
}

func TestTracker_ExpireRemovesSilentAgents(t *testing.T) {
	tr, now := newTestTracker(t, "")
	tr.handle(heartbeat("a", "qpidd", 1), false)
	require.Empty(t, tr.expire())

	*now = now.Add(2 * time.Minute)
	events := tr.expire()
	require.Len(t, events, 1)
	require.IsType(t, AgentRemoved{}, events[0])
	_, known := tr.lookup("a")
	require.False(t, known)
}

func TestTracker_SetFilterReportsScopeChanges(t *testing.T) {
	tr, _ := newTestTracker(t, DefaultAgentFilter)
	tr.handle(heartbeat("broker", "qpidd", 1), false)
	tr.handle(heartbeat("other", "qmf-agent", 1), false)

	events := tr.setFilter(MustParsePredicate("[eq, _product, [quote, 'qmf-agent']]"))
	require.Len(t, events, 2)
	kinds := map[string]string{}
	for _, ev := range events {
		switch e := ev.(type) {
		case AgentAdded:
			kinds[e.Agent.Name] = "added"
		case AgentRemoved:
			kinds[e.Agent.Name] = "removed"
		}
	}
	require.Equal(t, map[string]string{"broker": "removed", "other": "added"}, kinds)
}

func TestTracker_QueryResponsesFollowCorrelation(t *testing.T) {
	tr, _ := newTestTracker(t, "")
	tr.handle(heartbeat("broker", "qpidd", 1), false)
	tr.expect("c-schema", whatSchemaID)
	tr.expect("c-object", whatObject)

	schemaBody := []interface{}{
		map[string]interface{}{"_package_name": "org.apache.qpid.broker", "_class_name": "queue"},
		map[string]interface{}{"_package_name": "org.apache.qpid.broker", "_class_name": "exchange"},
	}
	events := tr.handle(message{Opcode: opQueryResponse, Agent: "broker", CorrelationID: "c-schema", Body: schemaBody}, true)
	require.Len(t, events, 1)
	schema, ok := events[0].(SchemaResponse)
	require.True(t, ok, "got %T", events[0])
	require.Equal(t, []string{"org.apache.qpid.broker:queue", "org.apache.qpid.broker:exchange"},
		[]string{schema.SchemaIDs[0].String(), schema.SchemaIDs[1].String()})

	objectBody := []interface{}{
		map[string]interface{}{
			"_schema_id": map[string]interface{}{"_package_name": "org.apache.qpid.broker", "_class_name": "queue"},
			"_object_id": map[string]interface{}{"_object_name": "org.apache.qpid.broker:queue:q1"},
			"_values":    map[string]interface{}{"name": "q1", "msgDepth": int64(4)},
		},
		map[string]interface{}{
			"_values": map[string]interface{}{"name": "q2"},
		},
	}
	events = tr.handle(message{Opcode: opQueryResponse, Agent: "broker", CorrelationID: "c-object", Body: objectBody}, true)
	require.Len(t, events, 1)
	resp, ok := events[0].(QueryResponse)
	require.True(t, ok, "got %T", events[0])
	require.Len(t, resp.Data, 2)
	require.Equal(t, "q1", resp.Data[0].Properties.String("name"))
	require.Equal(t, "org.apache.qpid.broker:queue:q1", resp.Data[0].ObjectName)
	require.Equal(t, Properties{{Key: "msgDepth", Value: int64(4)}, {Key: "name", Value: "q1"}}, resp.Data[0].Properties)
	require.Equal(t, "q2", resp.Data[1].Properties.String("name"))
	require.Empty(t, tr.pending)
}

func TestTracker_StrictSecurityDropsTopicResponses(t *testing.T) {
	tr := newAgentTracker(nil, time.Minute, true)
	require.Empty(t, tr.handle(message{Opcode: opQueryResponse, Agent: "a"}, false))
	require.Len(t, tr.handle(message{Opcode: opQueryResponse, Agent: "a"}, true), 1)
}

func TestTracker_ConsoleEvents(t *testing.T) {
	tr, _ := newTestTracker(t, "")
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	body := []interface{}{
		map[string]interface{}{
			"_schema_id": map[string]interface{}{"_package_name": "org.apache.qpid.broker", "_class_name": "queueDeclare"},
			"_values":    map[string]interface{}{"qName": "q1", "user": "guest"},
			"_severity":  int64(SeverityInform),
			"_timestamp": ts.UnixNano(),
		},
	}
	events := tr.handle(message{Opcode: opDataIndication, Content: contentEvent, Agent: "broker", Body: body}, false)
	require.Len(t, events, 1)
	ev, ok := events[0].(ConsoleEvent)
	require.True(t, ok, "got %T", events[0])
	require.Equal(t, SeverityInform, ev.Severity)
	require.True(t, ts.Equal(ev.Timestamp))
	require.Equal(t, "org.apache.qpid.broker:queueDeclare", ev.Data[0].SchemaID.String())
	require.Equal(t, "qName=q1, user=guest", ev.Data[0].Properties.Join())

	require.Empty(t, tr.handle(message{Opcode: opDataIndication, Content: "_data", Body: body}, false))
}

func TestTracker_MethodResponseAndUnknownOpcodes(t *testing.T) {
	tr, _ := newTestTracker(t, "")
	events := tr.handle(message{Opcode: opMethodResponse, Agent: "a", Body: map[string]interface{}{
		"_arguments": map[string]interface{}{"result": "ok"},
	}}, true)
	require.Len(t, events, 1)
	resp, ok := events[0].(MethodResponse)
	require.True(t, ok)
	require.Equal(t, "ok", resp.Arguments.String("result"))

	require.Empty(t, tr.handle(message{Opcode: opException}, true))
	require.Empty(t, tr.handle(message{Opcode: "_something_new"}, true))
}
