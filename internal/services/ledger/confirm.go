package ledger

// Confirmer approves destructive operations. The prompt is the question a
// user would be asked.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always approves every prompt; for tests and non-interactive callers that
// already obtained consent
var Always Confirmer = ConfirmFunc(func(string) bool { return true })

// Never declines every prompt
var Never Confirmer = ConfirmFunc(func(string) bool { return false })

// Prompts shown for destructive operations
const (
	PromptDeleteExpense    = "Delete this expense?"
	PromptDeleteInvestment = "Delete this investment?"
	PromptClearCollection  = "Remove every entry of this collection?"
	PromptReplaceAll       = "Are you sure? This will replace ALL current data."
	PromptClearAll         = "WARNING! This will erase ALL your data. Are you sure?"
	PromptClearAllAgain    = "Last chance! It cannot be recovered. Continue?"
)
