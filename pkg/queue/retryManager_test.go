package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShouldRetry тестирует принятие решения о повторе задачи
func TestShouldRetry(t *testing.T) {
	rm := NewRetryManager(3, 5*time.Second)

	tests := []struct {
		name      string
		task      *Task
		err       error
		wantRetry bool
	}{
		{
			name:      "transient error retries",
			task:      &Task{Attempts: 1, MaxRetries: 3},
			err:       errors.New("connection refused"),
			wantRetry: true,
		},
		{
			name:      "attempts exhausted",
			task:      &Task{Attempts: 3, MaxRetries: 3},
			err:       errors.New("connection refused"),
			wantRetry: false,
		},
		{
			name:      "invalid data never retries",
			task:      &Task{Attempts: 0, MaxRetries: 3},
			err:       errors.New("invalid task data: booking_id is required"),
			wantRetry: false,
		},
		{
			name:      "not found never retries",
			task:      &Task{Attempts: 1, MaxRetries: 3},
			err:       errors.New("booking not found"),
			wantRetry: false,
		},
		{
			name:      "already exists never retries",
			task:      &Task{Attempts: 1, MaxRetries: 3},
			err:       errors.New("review already exists for this booking"),
			wantRetry: false,
		},
		{
			name:      "not confirmed never retries",
			task:      &Task{Attempts: 1, MaxRetries: 3},
			err:       errors.New("booking is not confirmed"),
			wantRetry: false,
		},
		{
			name:      "nil error never retries",
			task:      &Task{Attempts: 0, MaxRetries: 3},
			err:       nil,
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retry, delay := rm.ShouldRetry(tt.task, tt.err)
			assert.Equal(t, tt.wantRetry, retry)
			if retry {
				assert.Greater(t, delay, time.Duration(0))
			} else {
				assert.Equal(t, time.Duration(0), delay)
			}
		})
	}
}

// TestCalculateBackoff тестирует экспоненциальный рост задержки
func TestCalculateBackoff(t *testing.T) {
	base := 2 * time.Second
	rm := NewRetryManager(5, base)

	// Первая попытка всегда ждет базовую задержку
	assert.Equal(t, base, rm.calculateBackoff(0))

	// Дрожание держит задержку в пределах ±50% от 2^(n-1)
	for attempt := 1; attempt <= 4; attempt++ {
		expected := base * time.Duration(1<<(attempt-1))
		delay := rm.calculateBackoff(attempt)

		assert.GreaterOrEqual(t, delay, expected/2, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, expected+expected/2, "attempt %d", attempt)
	}
}

// TestCalculateBackoffCap тестирует потолок задержки
func TestCalculateBackoffCap(t *testing.T) {
	base := time.Second
	rm := NewRetryManager(20, base)

	for attempt := 5; attempt <= 12; attempt++ {
		delay := rm.calculateBackoff(attempt)
		require.LessOrEqual(t, delay, base*16, "attempt %d", attempt)
	}
}
