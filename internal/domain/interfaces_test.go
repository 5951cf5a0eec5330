package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "section", LevelSection.String())
	assert.Equal(t, "sentence", LevelSentence.String())
	assert.Equal(t, "unknown", Level(9).String())
}
