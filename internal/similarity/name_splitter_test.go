package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSplitter(t *testing.T) {
	ns := NewNameSplitter()

	tests := []struct {
		input    string
		expected []string
	}{
		{"WebUI", []string{"web", "ui"}},
		{"ExpertRecommender", []string{"expert", "recommender"}},
		{"HTTPServer", []string{"http", "server"}},
		{"user_database", []string{"user", "database"}},
		{"web-ui", []string{"web", "ui"}},
		{"Only Suffix", []string{"only", "suffix"}},
		{"  cache  ", []string{"cache"}},
		{"Server2Client", []string{"server", "2", "client"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ns.Split(tt.input), "Split(%q)", tt.input)
	}
	assert.Equal(t, "webui", ns.Joined("Web UI"))
}

func TestNameSplitterCacheEviction(t *testing.T) {
	ns := NewNameSplitterWithSize(2)
	ns.Split("FirstName")
	ns.Split("SecondName")
	ns.Split("ThirdName")

	_, ok := ns.cache.Load("FirstName")
	assert.False(t, ok)
	assert.Equal(t, []string{"third", "name"}, ns.Split("ThirdName"))
}
