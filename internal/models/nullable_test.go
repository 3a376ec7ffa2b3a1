package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableDistinguishesAbsentNullAndValue(t *testing.T) {
	var payload struct {
		Category Nullable[int]       `json:"category"`
		DueDate  Nullable[time.Time] `json:"due_date"`
		Reminder Nullable[time.Time] `json:"reminder_date"`
	}
	body := `{"category": 4, "due_date": null}`
	require.NoError(t, json.Unmarshal([]byte(body), &payload))

	assert.True(t, payload.Category.Set)
	assert.True(t, payload.Category.Valid)
	require.NotNil(t, payload.Category.Ptr())
	assert.Equal(t, 4, *payload.Category.Ptr())

	assert.True(t, payload.DueDate.Set)
	assert.False(t, payload.DueDate.Valid)
	assert.Nil(t, payload.DueDate.Ptr())

	assert.False(t, payload.Reminder.Set)
}

func TestNullableRejectsWrongType(t *testing.T) {
	var payload struct {
		Category Nullable[int] `json:"category"`
	}
	err := json.Unmarshal([]byte(`{"category": "work"}`), &payload)
	assert.Error(t, err)
}
