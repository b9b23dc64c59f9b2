package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want ConditionValue
	}{
		{"string", `"Sales"`, StringValue("Sales")},
		{"list", `["2025-01-01","2025-02-01"]`, ListValue("2025-01-01", "2025-02-01")},
		{"single element list", `["2025-01-01"]`, ListValue("2025-01-01")},
		{"null", `null`, ConditionValue{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v ConditionValue
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestConditionValue_RejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{`42`, `{"a":1}`, `[1,2]`, `true`} {
		var v ConditionValue
		assert.Error(t, json.Unmarshal([]byte(raw), &v), raw)
	}
}

func TestConditionValue_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Condition{ID: "c1", Field: "title", Operator: "contains", Value: StringValue("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","field":"title","operator":"contains","value":"x"}`, string(data))

	data, err = json.Marshal(ListValue())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestSearchRequest_Root(t *testing.T) {
	var req SearchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"conditions":[{"id":"c1","field":"title","operator":"contains","value":"a"}],"groups":[]}`), &req))

	root := req.Root()
	assert.Equal(t, RootGroupID, root.ID)
	assert.Equal(t, OperatorAND, root.Operator)
	assert.Len(t, root.Conditions, 1)
	assert.Nil(t, req.Limit)

	req.Operator = OperatorOR
	assert.Equal(t, OperatorOR, req.Root().Operator)
	assert.True(t, Group{}.IsEmpty())
}
