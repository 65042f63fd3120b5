package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tablesift/domain/grid"
)

func TestGenerateIsDeterministic(t *testing.T) {
	g1, e1 := NewSheetGenerator(DefaultSheetConfig()).Generate()
	g2, e2 := NewSheetGenerator(DefaultSheetConfig()).Generate()

	assert.Equal(t, e1, e2)
	assert.Equal(t, g1.Len(), g2.Len())
	assert.Len(t, e1, DefaultSheetConfig().Tables)
}

func TestGenerateLayout(t *testing.T) {
	g, expected := NewSheetGenerator(DefaultSheetConfig()).Generate()

	headers := 0
	for i := 0; i < g.Len(); i++ {
		if grid.Classify(g.Row(i)) == grid.Header && i > 0 && grid.Classify(g.Row(i-1)) != grid.Header {
			headers++
		}
	}
	assert.Equal(t, len(expected), headers, "one header row starts each block")
	assert.Equal(t, grid.Blank, grid.Classify(g.Row(0)))
}
