package rabbitmq

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAck struct {
	mock.Mock
}

func (m *mockAck) Ack(multiple bool) error {
	return m.Called(multiple).Error(0)
}

func (m *mockAck) Nack(multiple, requeue bool) error {
	return m.Called(multiple, requeue).Error(0)
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect func(m *mockAck)
	}{
		{
			name:   "success acks",
			err:    nil,
			expect: func(m *mockAck) { m.On("Ack", false).Return(nil) },
		},
		{
			name:   "plain error requeues",
			err:    errors.New("boom"),
			expect: func(m *mockAck) { m.On("Nack", false, true).Return(nil) },
		},
		{
			name:   "reject error drops",
			err:    &RejectError{Err: errors.New("bad json")},
			expect: func(m *mockAck) { m.On("Nack", false, false).Return(nil) },
		},
		{
			name:   "wrapped reject error drops",
			err:    fmt.Errorf("handler: %w", &RejectError{Err: errors.New("bad json")}),
			expect: func(m *mockAck) { m.On("Nack", false, false).Return(nil) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockAck)
			tt.expect(m)
			settle(m, tt.err, 1, zerolog.Nop())
			m.AssertExpectations(t)
		})
	}
}

func TestPublish_NoChannel(t *testing.T) {
	c := &Client{exchange: "notifications", log: zerolog.Nop()}
	err := c.Publish(EventNewNotification, map[string]string{"title": "x"})
	assert.Error(t, err)
}
