package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphqlPayload(t *testing.T, query, operationName string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"query": query, "operationName": operationName})
	require.NoError(t, err)
	return raw
}

func TestOperationOf(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		operation string
		want      int
	}{
		{name: "shorthand query", query: "{ allCourses { id } }", want: opQuery},
		{name: "named query with variables", query: "query Courses($n: Int = 3) @cached { allCourses(first: $n) { id } }", want: opQuery},
		{name: "plain mutation", query: "mutation { deleteCourse(id: 1) }", want: opMutation},
		{name: "comment before mutation", query: "# create\nmutation { addStudent(name: \"X\") { id } }", want: opMutation},
		{name: "fragment before mutation", query: "fragment F on Student { id } mutation { addStudent(name: \"X\") { ...F } }", want: opMutation},
		{name: "fragment before query", query: "fragment F on Course { id }\nquery { allCourses { ...F } }", want: opQuery},
		{name: "mutation among queries", query: "query A { a } mutation B { b }", operation: "A", want: opMutation},
		{name: "subscription", query: "subscription { courseAdded { id } }", want: opSubscription},
		{name: "keyword inside string", query: "query { search(q: \"} mutation {\") { id } }", want: opQuery},
		{name: "keyword inside block string", query: "query { search(q: \"\"\"\nmutation { x }\n\"\"\") { id } }", want: opQuery},
		{name: "keyword inside comment", query: "query { a # mutation { b }\n}", want: opQuery},
		{name: "unknown operation name", query: "query A { a }", operation: "B", want: opUnknown},
		{name: "comment only", query: "# nothing here", want: opUnknown},
		{name: "empty", query: "", want: opUnknown},
		{name: "unbalanced braces", query: "query { a { b }", want: opUnknown},
		{name: "unterminated string", query: "query { a(x: \"oops) }", want: opUnknown},
		{name: "schema definition", query: "type Course { id: ID }", want: opUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, operationOf(graphqlPayload(t, tt.query, tt.operation)))
		})
	}
}

func TestOperationOfInvalidPayload(t *testing.T) {
	assert.Equal(t, opUnknown, operationOf(json.RawMessage(`not json`)))
}
