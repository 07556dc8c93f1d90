package llm

import (
	"fmt"

	"ragqa/internal/port"
)

// ScriptedLLM returns canned answers without any model. Used by tests
// and by the offline provider so the pipeline stays runnable end to
// end without credentials.
type ScriptedLLM struct {
	// Reply builds the output for a prompt. When nil a fixed echo
	// reply is produced.
	Reply func(prompt string) (string, error)

	// Calls counts Generate invocations.
	Calls int
}

func NewScriptedLLM(reply func(prompt string) (string, error)) *ScriptedLLM {
	return &ScriptedLLM{Reply: reply}
}

func (m *ScriptedLLM) Generate(prompt string, _ port.GenerateOptions) (string, error) {
	m.Calls++
	if m.Reply != nil {
		return m.Reply(prompt)
	}
	return fmt.Sprintf("scripted answer (%d chars of prompt)", len(prompt)), nil
}

func (m *ScriptedLLM) GenerateWithContext(context, question string, opts port.GenerateOptions) (string, error) {
	return m.Generate(QAPrompt(context, question), opts)
}

func (m *ScriptedLLM) ModelName() string {
	return "scripted"
}
