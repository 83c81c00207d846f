package domain

// CareGuide holds the care instructions returned for an identified plant.
type CareGuide struct {
	Water       string `json:"water"`
	Sun         string `json:"sun"`
	Soil        string `json:"soil"`
	Temperature string `json:"temperature"`
	Fertilizer  string `json:"fertilizer"`
}

// PlantRecord is the structured result of one identification. The JSON tags
// match the shape the model is asked to return.
type PlantRecord struct {
	Name           string    `json:"name"`
	ScientificName string    `json:"scientificName"`
	Description    string    `json:"description"`
	Care           CareGuide `json:"care"`
	FunFact        string    `json:"funFact"`
	Problems       []string  `json:"problems"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type ChatMessage struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// AppState is the state of the identification flow driving which view renders.
type AppState int

const (
	StateIdle AppState = iota
	StateAnalyzing
	StateResult
	StateError
)

func (s AppState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateResult:
		return "result"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
