package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPorts(t *testing.T) {
	answer := &mockAnswerService{}
	catalog := &mockCatalogService{}

	p := NewPorts(answer, catalog)

	assert.Equal(t, answer, p.Answer)
	assert.Equal(t, catalog, p.Catalog)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		err   error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing answer", &Ports{Catalog: &mockCatalogService{}}, ErrMissingAnswerService},
		{"answer only", &Ports{Answer: &mockAnswerService{}}, nil},
		{"all ports", NewPorts(&mockAnswerService{}, &mockCatalogService{}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
