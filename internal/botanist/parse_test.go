package botanist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roseJSON = `{
  "name": "Rose",
  "scientificName": "Rosa",
  "description": "A classic flowering shrub.",
  "care": {"water": "Twice weekly", "sun": "Full Sun", "soil": "Loamy", "temperature": "15-25C", "fertilizer": "Monthly"},
  "funFact": "Roses are related to apples.",
  "problems": ["Aphids", "Black spot"]
}`

func TestParseRecord(t *testing.T) {
	record, err := ParseRecord(roseJSON)
	require.NoError(t, err)

	assert.Equal(t, "Rose", record.Name)
	assert.Equal(t, "Rosa", record.ScientificName)
	assert.Equal(t, "Twice weekly", record.Care.Water)
	assert.Equal(t, "Monthly", record.Care.Fertilizer)
	assert.Equal(t, []string{"Aphids", "Black spot"}, record.Problems)
}

func TestParseRecordFenced(t *testing.T) {
	record, err := ParseRecord("```json\n" + roseJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Rose", record.Name)
}

func TestParseRecordNotAPlant(t *testing.T) {
	raw := `{"name":"","scientificName":"","description":"This is not a plant",
		"care":{"water":"","sun":"","soil":"","temperature":"","fertilizer":""},
		"funFact":"","problems":[]}`

	record, err := ParseRecord(raw)
	require.NoError(t, err)
	assert.Empty(t, record.Name)
	assert.Equal(t, "This is not a plant", record.Description)
	assert.NotNil(t, record.Problems)
	assert.Empty(t, record.Problems)
}

func TestParseRecordErrors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOp string
	}{
		{name: "empty", raw: "", wantOp: "response"},
		{name: "whitespace", raw: "  \n ", wantOp: "response"},
		{name: "not json", raw: "It looks like a rose to me.", wantOp: "parse"},
		{name: "truncated", raw: `{"name":"Rose","scientificName":`, wantOp: "parse"},
		{name: "array", raw: `["Rose"]`, wantOp: "parse"},
		{name: "missing care", raw: `{"name":"Rose","scientificName":"Rosa","description":"d","funFact":"f","problems":[]}`, wantOp: "parse"},
		{name: "missing care field", raw: `{"name":"Rose","scientificName":"Rosa","description":"d","care":{"water":"w","sun":"s","soil":"s","temperature":"t"},"funFact":"f","problems":[]}`, wantOp: "parse"},
		{name: "null problems", raw: `{"name":"Rose","scientificName":"Rosa","description":"d","care":{"water":"w","sun":"s","soil":"s","temperature":"t","fertilizer":"f"},"funFact":"f","problems":null}`, wantOp: "parse"},
		{name: "wrong type", raw: `{"name":"Rose","scientificName":"Rosa","description":"d","care":{"water":"w","sun":"s","soil":"s","temperature":"t","fertilizer":"f"},"funFact":"f","problems":"aphids"}`, wantOp: "parse"},
		{name: "unknown field", raw: `{"name":"Rose","scientificName":"Rosa","description":"d","care":{"water":"w","sun":"s","soil":"s","temperature":"t","fertilizer":"f"},"funFact":"f","problems":[],"toxic":true}`, wantOp: "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := ParseRecord(tt.raw)
			assert.Nil(t, record)

			var extErr *ExtractionError
			require.True(t, errors.As(err, &extErr))
			assert.Equal(t, tt.wantOp, extErr.Op)
		})
	}
}

func TestParseRecordEmptyIsErrEmptyResponse(t *testing.T) {
	_, err := ParseRecord("")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{"```", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFence(tt.in))
	}
}
