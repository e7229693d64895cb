package normalizer

// Recognized tag-key aliases, one table per concept. Traced agents report
// attributes under either the generic gen_ai convention or older
// vendor-specific spellings; alias lists are checked in order and the
// first present key wins. Extend these tables rather than scattering key
// literals through consuming code.

// Kind detection keys.
var (
	genSystemKeys = []string{"gen_ai.system", "llm.system"}
	toolNameKeys  = []string{"gen_ai.tool.name", "tool.name"}
	agentNameKeys = []string{"gen_ai.agent.name", "agent.name"}
)

// Operation-name prefixes, checked after the tag keys for the same kind.
const (
	toolOpPrefix  = "tool:"
	agentOpPrefix = "agent:"
)

// Token count keys, generic first, legacy vendor spelling second.
var (
	promptTokenKeys     = []string{"gen_ai.usage.prompt_tokens", "llm.usage.prompt_tokens"}
	completionTokenKeys = []string{"gen_ai.usage.completion_tokens", "llm.usage.completion_tokens"}
	totalTokenKeys      = []string{"gen_ai.usage.total_tokens", "llm.usage.total_tokens"}
)

// Input/output payload keys: the prompt/completion pair, then the generic
// value pair.
var (
	inputKeys  = []string{"gen_ai.prompt", "input.value"}
	outputKeys = []string{"gen_ai.completion", "output.value"}
)

// Error keys. The boolean flag drives span and trace status; the message
// keys populate the span error text. The two are independent signals and
// both are preserved.
const errorFlagKey = "error"

var errorMessageKeys = []string{"error.message", "exception.message"}
