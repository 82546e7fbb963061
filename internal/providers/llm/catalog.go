package llm

// Provider families
const (
	FamilyAnthropic = "anthropic"
	FamilyOpenAI    = "openai"
	FamilyDeepSeek  = "deepseek"
	FamilyGroq      = "groq"
)

// DefaultOperatorID is the operator new chat windows start with
const DefaultOperatorID = "claude-sonnet"

// Operator is a selectable model behind a provider family
type Operator struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

var operators = []Operator{
	{ID: "claude-sonnet", Name: "Claude Sonnet", Provider: FamilyAnthropic, Model: "claude-3-5-sonnet-20241022"},
	{ID: "gpt-4", Name: "OpenAI 4.0", Provider: FamilyOpenAI, Model: "gpt-4-turbo-preview"},
	{ID: "deepseek-r1", Name: "DeepSeek r1", Provider: FamilyDeepSeek, Model: "deepseek-chat"},
	{ID: "deepseek-v3", Name: "DeepSeek v3", Provider: FamilyDeepSeek, Model: "deepseek-chat-v3"},
	{ID: "llama-3.3", Name: "Llama3.3", Provider: FamilyGroq, Model: "llama2-70b-4096"},
}

// Operators returns the catalog in display order
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// LookupOperator finds an operator by id
func LookupOperator(id string) (Operator, bool) {
	for _, op := range operators {
		if op.ID == id {
			return op, true
		}
	}
	return Operator{}, false
}

// Families returns the distinct provider families in catalog order
func Families() []string {
	seen := make(map[string]bool)
	var out []string
	for _, op := range operators {
		if !seen[op.Provider] {
			seen[op.Provider] = true
			out = append(out, op.Provider)
		}
	}
	return out
}
