package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+380501234567", "501234567"},
		{"380501234567", "501234567"},
		{"0501234567", "501234567"},
		{"(050) 123-45", "05012345"},
		{"no digits", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhoneSuffix(tt.in), tt.in)
	}
}

func TestMatchablePhone(t *testing.T) {
	suffix, ok := MatchablePhone("+380 (50) 123-45-67")
	assert.True(t, ok)
	assert.Equal(t, "501234567", suffix)

	for _, phone := range []string{"7", "(050) 123-45", "", "no digits"} {
		_, ok := MatchablePhone(phone)
		assert.False(t, ok, phone)
	}
}

func TestAddress(t *testing.T) {
	a := Address{City: "Київ", Street: "вул. Шевченка", House: "10", Entrance: "2", Floor: "3", Apartment: "12"}

	assert.Equal(t, "Київ, вул. Шевченка, 10, кв. 12", a.Short())
	assert.Equal(t, "г.Київ, вул. Шевченка, д.10, под.2, эт.3, кв.12", a.Full())
}
