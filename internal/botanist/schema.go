package botanist

import "github.com/sashabaranov/go-openai/jsonschema"

// Field descriptions shared by every schema rendition.
const (
	DescName           = "Common name of the plant"
	DescScientificName = "Scientific Latin name"
	DescDescription    = "A brief, engaging description of the plant (max 2 sentences)."
	DescWater          = "Watering frequency and tips"
	DescSun            = "Light requirements (e.g. Full Sun, Partial Shade)"
	DescSoil           = "Preferred soil type"
	DescTemperature    = "Ideal temperature range"
	DescFertilizer     = "Fertilizer needs"
	DescFunFact        = "One interesting fact about this plant."
	DescProblems       = "List of 2-3 common pests or diseases to watch out for."
)

var (
	// RequiredFields lists the top-level keys a PlantRecord must carry.
	RequiredFields = []string{"name", "scientificName", "description", "care", "funFact", "problems"}
	// RequiredCareFields lists the keys of the care object.
	RequiredCareFields = []string{"water", "sun", "soil", "temperature", "fertilizer"}
)

// RecordSchema returns the JSON schema of a PlantRecord. Objects are closed
// (additionalProperties false) so strict structured-output modes accept it.
func RecordSchema() *jsonschema.Definition {
	str := func(desc string) jsonschema.Definition {
		return jsonschema.Definition{Type: jsonschema.String, Description: desc}
	}
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"name":           str(DescName),
			"scientificName": str(DescScientificName),
			"description":    str(DescDescription),
			"care": {
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"water":       str(DescWater),
					"sun":         str(DescSun),
					"soil":        str(DescSoil),
					"temperature": str(DescTemperature),
					"fertilizer":  str(DescFertilizer),
				},
				Required:             RequiredCareFields,
				AdditionalProperties: false,
			},
			"funFact": str(DescFunFact),
			"problems": {
				Type:        jsonschema.Array,
				Items:       &jsonschema.Definition{Type: jsonschema.String},
				Description: DescProblems,
			},
		},
		Required:             RequiredFields,
		AdditionalProperties: false,
	}
}
