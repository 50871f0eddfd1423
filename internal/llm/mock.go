package llm

import "context"

// MockProvider is a test double that replays scripted responses in order,
// repeating the last one once the script runs out. It records the messages
// from each call for assertions.
type MockProvider struct {
	Responses []string
	Err       error
	CallUsage Usage

	Calls [][]Message
	calls int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Chat(_ context.Context, _ string, msgs []Message, _ Settings) (string, Usage, error) {
	m.Calls = append(m.Calls, append([]Message(nil), msgs...))
	if m.Err != nil {
		return "", Usage{}, m.Err
	}
	if len(m.Responses) == 0 {
		return "", m.CallUsage, nil
	}
	i := m.calls
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	m.calls++
	return m.Responses[i], m.CallUsage, nil
}
