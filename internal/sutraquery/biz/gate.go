package biz

import (
	"strings"

	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/textutil"
)

// scriptureKeywords 与经文相关的关键词。命中任意一个即放行。
var scriptureKeywords = []string{
	"krishna", "rama", "ram", "sita", "hanuman", "arjuna", "dharma", "karma", "yoga", "meditation",
	"bhagavad", "gita", "ramayana", "mahabharata", "vedas", "upanishads", "sanskrit",
	"moksha", "nirvana", "hindu", "hinduism", "spiritual", "soul", "atman", "brahman",
	"vishnu", "shiva", "ganesha", "devi", "goddess", "god", "divine", "sacred", "holy",
	"temple", "prayer", "mantra", "om", "aum", "patanjali", "sage", "guru", "ashram",
	"verse", "chapter", "shloka", "sutra", "philosophy", "truth", "consciousness",
	"devotion", "worship", "faith", "righteous", "sin", "virtue", "ethics", "duty",
	"life", "death", "rebirth", "purpose", "peace", "happiness", "suffering", "wisdom",
	"dasharatha", "pita", "mata", "father", "mother", "son", "daughter", "brother", "sister",
	"wife", "husband", "bharat", "lakshmana", "shatrughna", "kaikeyi", "kausalya", "sumitra",
	"ravana", "lakshman", "bharata", "mandodari", "surpanakha", "kumbhakarna", "vibhishana",
	"pandava", "kaurava", "draupadi", "yudhishthira", "bhima", "nakula", "sahadeva",
	"duryodhana", "dushasana", "shakuni", "gandhari", "kunti", "madri", "pandu", "dhritarashtra",
}

// modernKeywords 现代话题关键词。命中任意一个直接拒绝。
var modernKeywords = []string{
	"salman khan", "akshay kumar", "shah rukh khan", "bollywood", "actor", "actress", "movie", "film",
	"cricket", "politics", "politician", "president", "prime minister", "covid", "coronavirus",
	"technology", "computer", "internet", "facebook", "instagram", "whatsapp", "twitter",
	"stock market", "cryptocurrency", "bitcoin", "business", "company", "startup",
	"sports", "football", "tennis", "olympics", "ipl", "match", "score",
}

// hindiPatterns 印地语疑问句式,常见于关于人物关系的提问。
var hindiPatterns = []string{
	"kya naam", "kaun", "kahan", "kaise", "kyun", "kya", "ki", "ka", "ke",
	"naam tha", "naam hai", "kon tha", "kon hai", "kahan tha", "kahan hai",
}

// spiritualPatterns 通用哲学/灵性提问句式,宽松放行。
var spiritualPatterns = []string{
	"what is", "how to", "meaning", "significance", "teaching", "purpose of",
	"why do", "how can", "what does", "tell me about", "explain", "describe",
	"who is", "who was", "where is", "where was", "when did",
}

// RejectionAnswer 主题外提问的固定回复。
const RejectionAnswer = "I can only answer questions about Hindu religious texts including the Bhagavad Gita, Ramayana, Mahabharata, and Yoga Sutras. Please ask questions related to these sacred texts, their teachings, characters, or philosophical concepts."

// TopicGate 判定提问是否与经文主题相关。
// 策略偏宽松:只在明确命中现代话题时拒绝,
// 含天城文、经文关键词或通用灵性句式的提问一律放行。
type TopicGate struct{}

// NewTopicGate 创建主题判定器。
func NewTopicGate() *TopicGate {
	return &TopicGate{}
}

// Allows 返回提问是否可以进入检索流程。
func (g *TopicGate) Allows(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return false
	}

	// 天城文提问默认与经文相关。
	if textutil.ContainsDevanagari(question) {
		return true
	}

	if containsAny(q, modernKeywords) {
		return false
	}

	if containsAny(q, scriptureKeywords) {
		return true
	}
	if containsAny(q, hindiPatterns) && len(q) > 5 {
		return true
	}
	if containsAny(q, spiritualPatterns) && len(q) > 10 {
		return true
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
