package model

// Memory keys for caller-supplied inputs. Tool outputs use the ToolID string.
const (
	KeyLocation = "location"
	KeyCompany  = "company"
)

// Memory is the per-run key/value store shared by the agent's tools.
// Keys keep the position of their first write; later writes overwrite the value.
// It is not safe for concurrent use.
type Memory struct {
	keys   []string
	values map[string]any
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]any)}
}

// Set stores v under key.
func (m *Memory) Set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key has been written.
func (m *Memory) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in first-write order.
func (m *Memory) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Memory) Len() int {
	return len(m.keys)
}

// String returns the string stored under key, or "" if absent or not a string.
func (m *Memory) String(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *Memory) Skills() ([]string, bool) {
	v, ok := m.values[string(ToolSkills)].([]string)
	return v, ok
}

func (m *Memory) Resume() (string, bool) {
	v, ok := m.values[string(ToolResume)].(string)
	return v, ok
}

func (m *Memory) Cover() (string, bool) {
	v, ok := m.values[string(ToolCover)].(string)
	return v, ok
}

func (m *Memory) Jobs() ([]JobListing, bool) {
	v, ok := m.values[string(ToolJobs)].([]JobListing)
	return v, ok
}

func (m *Memory) Posts() ([]Post, bool) {
	v, ok := m.values[string(ToolPosts)].([]Post)
	return v, ok
}
