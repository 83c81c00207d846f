package botanist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/greenthumb/internal/domain"
)

// ParseRecord decodes the model's JSON answer into a PlantRecord. Every
// required key must be present; empty values are allowed because that is how
// the model describes a photo that is not a plant. Failures are returned as
// *ExtractionError.
func ParseRecord(raw string) (*domain.PlantRecord, error) {
	body := stripFence(raw)
	if body == "" {
		return nil, &ExtractionError{Op: "response", Err: ErrEmptyResponse}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, &ExtractionError{Op: "parse", Err: fmt.Errorf("decode record: %w", err)}
	}
	if err := requireKeys(fields, RequiredFields, ""); err != nil {
		return nil, &ExtractionError{Op: "parse", Err: err}
	}

	var care map[string]json.RawMessage
	if err := json.Unmarshal(fields["care"], &care); err != nil {
		return nil, &ExtractionError{Op: "parse", Err: fmt.Errorf("decode care: %w", err)}
	}
	if err := requireKeys(care, RequiredCareFields, "care."); err != nil {
		return nil, &ExtractionError{Op: "parse", Err: err}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	var record domain.PlantRecord
	if err := dec.Decode(&record); err != nil {
		return nil, &ExtractionError{Op: "parse", Err: fmt.Errorf("decode record: %w", err)}
	}
	if record.Problems == nil {
		record.Problems = []string{}
	}
	return &record, nil
}

func requireKeys(fields map[string]json.RawMessage, keys []string, prefix string) error {
	var missing []string
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			missing = append(missing, prefix+k)
		}
	}
	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// stripFence removes a surrounding Markdown code fence such as ```json ... ```.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
