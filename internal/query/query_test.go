// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSOQL(t *testing.T) {
	tests := []struct {
		name       string
		table      string
		columns    []string
		conditions []Condition
		want       string
	}{
		{
			name:    "no conditions",
			table:   "Account",
			columns: []string{"Id", "Name"},
			want:    "SELECT Id, Name FROM Account",
		},
		{
			name:       "and with or group",
			table:      "CaseHistory",
			columns:    []string{"Id", "Field", "NewValue", "Case.CaseNumber"},
			conditions: []Condition{Where("CreatedDate=THIS_MONTH"), Or("Field='Owner'", "Field='ownerAccepted'")},
			want:       "SELECT Id, Field, NewValue, Case.CaseNumber FROM CaseHistory WHERE CreatedDate=THIS_MONTH AND (Field='Owner' OR Field='ownerAccepted')",
		},
		{
			name:       "empty condition skipped",
			table:      "Case",
			columns:    []string{"Id"},
			conditions: []Condition{{}, Where("IsClosed=false")},
			want:       "SELECT Id FROM Case WHERE IsClosed=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSOQL(tt.table, tt.columns, tt.conditions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSOQLRejectsEmptyParts(t *testing.T) {
	_, err := BuildSOQL("", []string{"Id"}, nil)
	assert.Error(t, err)
	_, err = BuildSOQL("Case", nil, nil)
	assert.Error(t, err)
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Condition
	}{
		{"single", "Field = 'Owner'", Condition{"Field = 'Owner'"}},
		{"alternatives", "CreatedDate = TODAY | CreatedDate = YESTERDAY", Condition{"CreatedDate = TODAY", "CreatedDate = YESTERDAY"}},
		{"pipe in single quotes", "Subject = 'disk|full'", Condition{"Subject = 'disk|full'"}},
		{"pipe in double quotes", `Subject = "a|b" | Status = 'New'`, Condition{`Subject = "a|b"`, "Status = 'New'"}},
		{"escaped quote", `Subject = 'it\'s|fine' | Id = '1'`, Condition{`Subject = 'it\'s|fine'`, "Id = '1'"}},
		{"blank parts", " | Id = '1' |", Condition{"Id = '1'"}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCondition(tt.in))
		})
	}
}

func TestParseConditionKeepsQuotedPipeInSOQL(t *testing.T) {
	soql, err := BuildSOQL("Case", []string{"Id"}, []Condition{ParseCondition("Subject = 'disk|full'")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT Id FROM Case WHERE Subject = 'disk|full'", soql)
}

func TestURLEscapesStatement(t *testing.T) {
	u := URL("https://na1.example.com/services/data/v35.0/", "SELECT Id FROM Case WHERE Subject = 'a&b'")
	require.True(t, strings.HasPrefix(u, "https://na1.example.com/services/data/v35.0/query/?q="))
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "SELECT Id FROM Case WHERE Subject = 'a&b'", parsed.Query().Get("q"))
}

func TestFlattenDropsAttributesAtEveryDepth(t *testing.T) {
	rec := Record{
		"attributes": map[string]any{"type": "CaseHistory", "url": "/x"},
		"Id":         "017A",
		"NewValue":   "John.Smith",
		"Case": map[string]any{
			"attributes": map[string]any{"type": "Case"},
			"CaseNumber": "00001026",
			"Owner": map[string]any{
				"attributes": map[string]any{"type": "User"},
				"Name":       "Jane Doe",
			},
		},
	}

	got := Flatten(rec)

	assert.Equal(t, Record{
		"Id":              "017A",
		"NewValue":        "John.Smith",
		"Case.CaseNumber": "00001026",
		"Case.Owner.Name": "Jane Doe",
	}, got)
	for k := range got {
		assert.NotContains(t, k, "attributes")
		assert.NotContains(t, k, "type")
	}
}

func TestFlattenKeepsScalarAttributesAndLists(t *testing.T) {
	rec := Record{
		"attributes": "not a map",
		"Tags":       []any{"a", "b"},
		"Parent":     nil,
	}
	got := Flatten(rec)
	assert.Equal(t, "not a map", got["attributes"])
	assert.Equal(t, []any{"a", "b"}, got["Tags"])
	v, ok := got["Parent"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestFlattenIdempotentOnFlatInput(t *testing.T) {
	flat := Record{"Id": "1", "Case.CaseNumber": "7", "Amount": 12.5}
	once := Flatten(flat)
	assert.Equal(t, flat, once)
	assert.Equal(t, once, Flatten(once))

	once["Id"] = "changed"
	assert.Equal(t, "1", flat["Id"], "Flatten must return a copy")
}

func TestFlattenAllPreservesOrder(t *testing.T) {
	in := []Record{{"Id": "1"}, {"Id": "2"}, {"Id": "3"}}
	out := FlattenAll(in)
	require.Len(t, out, 3)
	for i, r := range out {
		assert.Equal(t, in[i]["Id"], r["Id"])
	}
}
