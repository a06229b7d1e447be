package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicGateAllows(t *testing.T) {
	gate := NewTopicGate()

	tests := []struct {
		question string
		allowed  bool
	}{
		// 经文关键词
		{"What did Krishna teach Arjuna?", true},
		{"Tell me about dharma", true},
		{"Who was Ravana?", true},
		{"What is the meaning of karma yoga?", true},
		// 天城文
		{"कर्मण्येवाधिकारस्ते का अर्थ क्या है", true},
		// 印地语句式
		{"sita ke pita ka naam kya tha", true},
		// 通用灵性句式
		{"what is the purpose of existence", true},
		{"tell me about inner tranquility", true},
		// 现代话题直接拒绝
		{"Who is Salman Khan?", false},
		{"What is the bitcoin price today?", false},
		{"Latest cricket match score", false},
		// 即使含灵性句式,命中现代关键词也拒绝
		{"tell me about the stock market", false},
		// 无任何信号
		{"asdf qwerty", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, gate.Allows(tt.question), "question %q", tt.question)
	}
}

func TestTopicGateShortQuestions(t *testing.T) {
	gate := NewTopicGate()

	// 句式命中但长度不足
	assert.False(t, gate.Allows("ka"))
	// 关键词命中不受长度限制
	assert.True(t, gate.Allows("gita"))
}
