package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ruralsv/retreat/service"
)

func TestValidateSlotID(t *testing.T) {
	valid := []string{"hero", "venue-barn", "gallery-2", "a"}
	for _, id := range valid {
		assert.NoError(t, service.ValidateSlotID(id), id)
	}

	invalid := []string{"", "Hero", "venue barn", "../etc/passwd", "slot_1", strings.Repeat("a", 65)}
	for _, id := range invalid {
		assert.Error(t, service.ValidateSlotID(id), id)
	}
}

func TestValidatePassFields(t *testing.T) {
	assert.NoError(t, service.ValidatePassFields("Ana", "ana@example.com", "hunter2"))

	assert.Error(t, service.ValidatePassFields("", "ana@example.com", "hunter2"))
	assert.Error(t, service.ValidatePassFields("  ", "ana@example.com", "hunter2"))
	assert.Error(t, service.ValidatePassFields("Ana", "ana@@example", "hunter2"))
	assert.Error(t, service.ValidatePassFields("Ana", "ana example.com", "hunter2"))
	assert.Error(t, service.ValidatePassFields("Ana", "ana@example.com", "abc"))
	assert.Error(t, service.ValidatePassFields(strings.Repeat("n", 100), "ana@example.com", "hunter2"))
}

func TestValidateMomentMeta(t *testing.T) {
	assert.NoError(t, service.ValidateMomentMeta("A caption", "Ana", "West field"))
	assert.NoError(t, service.ValidateMomentMeta("", "", ""))

	assert.Error(t, service.ValidateMomentMeta(strings.Repeat("c", 201), "Ana", ""))
	assert.Error(t, service.ValidateMomentMeta("ok", strings.Repeat("a", 81), ""))
	assert.Error(t, service.ValidateMomentMeta("ok", "Ana", strings.Repeat("l", 121)))
}
