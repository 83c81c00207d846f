package botanist

import (
	"encoding/json"
	"fmt"

	"github.com/vbonduro/greenthumb/internal/domain"
)

// SystemInstruction fixes the persona for identification calls.
const SystemInstruction = "You are an expert botanist. Be precise, helpful, and encouraging."

// IdentifyPrompt is the user instruction sent alongside the photo.
const IdentifyPrompt = "Identify this plant and provide detailed care instructions. " +
	"If it is not a plant, return a JSON with empty fields but indicate in the description that it is not a plant."

// SchemaPrompt extends IdentifyPrompt for backends that cannot attach a
// response schema to the call.
func SchemaPrompt() string {
	schema, err := json.Marshal(RecordSchema())
	if err != nil {
		// RecordSchema is static; a marshal failure is a programming error.
		panic(fmt.Sprintf("marshal record schema: %v", err))
	}
	return IdentifyPrompt + "\n\nRespond with a single JSON object and nothing else. " +
		"It must match this JSON schema:\n" + string(schema)
}

// ChatInstruction builds the system instruction for a chat session. A nil
// plant gives the generic gardening assistant.
func ChatInstruction(plant *domain.PlantRecord) string {
	if plant == nil {
		return "You are GreenThumb, a helpful gardening assistant. " +
			"Answer questions about plants, gardening, and botany. Keep answers concise."
	}
	return fmt.Sprintf("You are GreenThumb, a gardening assistant. "+
		"The user is currently looking at a plant identified as %s (%s).\n"+
		"Here is some context about it: %s. Care info: Water(%s), Sun(%s).\n"+
		"Answer their questions about this specific plant or general gardening advice. "+
		"Keep answers concise (under 100 words) unless asked for more detail.",
		plant.Name, plant.ScientificName, plant.Description, plant.Care.Water, plant.Care.Sun)
}
