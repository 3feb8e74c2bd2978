package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckExtractArgs(t *testing.T) {
	assert.NoError(t, checkExtractArgs("syllabus.pdf", nil))
	assert.NoError(t, checkExtractArgs("", []string{"quiz", "friday"}))
	assert.ErrorIs(t, checkExtractArgs("syllabus.pdf", []string{"quiz"}), errTextAndFile)
	assert.Error(t, checkExtractArgs("", []string{"  "}))
	assert.Error(t, checkExtractArgs("", nil))
}

func TestExtractRejectsFileAndText(t *testing.T) {
	a := &app{}
	dirty, err := a.extract([]string{"-file", "syllabus.txt", "quiz", "friday"})
	assert.ErrorIs(t, err, errTextAndFile)
	assert.False(t, dirty)
}
