package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"ask", km.Ask, []string{"enter"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"select", km.Select, []string{"enter"}},
		{"new question", km.NewQuestion, []string{"n", "/"}},
		{"reload", km.Reload, []string{"r"}},
		{"clear", km.Clear, []string{"x"}},
		{"confirm", km.Confirm, []string{"y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Contains(t, km.AnswerHelp(), km.NewQuestion)
	assert.Contains(t, km.DocumentsHelp(), km.Clear)

	full := km.FullHelp()
	require.Len(t, full, 4)
	assert.Contains(t, full[3], km.Quit)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name     string
		keyStr   string
		binding  key.Binding
		expected bool
	}{
		{"q matches quit", "q", km.Quit, true},
		{"ctrl+c matches quit", "ctrl+c", km.Quit, true},
		{"j matches down", "j", km.Down, true},
		{"slash matches new question", "/", km.NewQuestion, true},
		{"x does not match confirm", "x", km.Confirm, false},
		{"empty matches nothing", "", km.Ask, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Matches(tt.keyStr, tt.binding))
		})
	}
}
