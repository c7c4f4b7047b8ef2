package prompt

import (
	"fmt"
	"strings"
)

var fallbackPools = map[Language][]string{
	EnglishUS: {
		"Can you tell me more about how you're feeling right now?",
		"When did you first notice these symptoms?",
		"How would you rate your pain or discomfort on a scale of 1 to 10?",
		"Have you experienced anything like this before?",
		"Are you taking any medications currently?",
		"Is there anything that makes your symptoms better or worse?",
		"How long have you been experiencing these symptoms?",
		"Can you describe the symptoms in more detail?",
		"Have you noticed any other changes in how you feel?",
		"Is there anything else you'd like me to know about your condition?",
		"What triggers or worsens your symptoms?",
		"Do you have any family history of similar conditions?",
		"How are these symptoms affecting your daily activities?",
		"Have you tried any treatments or remedies so far?",
		"Are there any specific times when symptoms are worse?",
		"What concerns you most about these symptoms?",
		"Have you had any recent changes in lifestyle or stress?",
		"Are you experiencing any sleep difficulties?",
		"How is your appetite and energy level?",
		"Do you have any allergies or medical conditions I should know about?",
	},
	HindiIN: {
		"क्या आप मुझे बता सकते हैं कि आप अभी कैसा महसूस कर रहे हैं?",
		"आपने यह लक्षण पहली बार कब देखे थे?",
		"आप अपने दर्द या परेशानी को 1 से 10 के पैमाने पर कैसे रेट करेंगे?",
		"क्या आपने पहले भी कुछ इस तरह का अनुभव किया है?",
		"क्या आप वर्तमान में कोई दवाइयाँ ले रहे हैं?",
		"क्या कोई ऐसी चीज़ है जो आपके लक्षणों को बेहतर या बदतर बनाती है?",
		"आप कितने समय से इन लक्षणों का अनुभव कर रहे हैं?",
		"क्या आप लक्षणों का और विस्तार से वर्णन कर सकते हैं?",
		"क्या आपने अपने स्वास्थ्य में कोई और बदलाव देखा है?",
		"क्या आपकी स्थिति के बारे में कुछ और है जो आप मुझे बताना चाहेंगे?",
		"कौन सी चीज़ें आपके लक्षणों को बढ़ाती या कम करती हैं?",
		"क्या आपके परिवार में इस तरह की कोई बीमारी का इतिहास है?",
		"ये लक्षण आपकी दैनिक गतिविधियों को कैसे प्रभावित कर रहे हैं?",
		"क्या आपने अब तक कोई इलाज या उपाय किया है?",
		"क्या कोई खास समय है जब लक्षण और बदतर हो जाते हैं?",
		"इन लक्षणों के बारे में आपको सबसे ज्यादा क्या चिंता है?",
		"क्या हाल ही में आपकी जीवनशैली या तनाव में कोई बदलाव आया है?",
		"क्या आपको नींद की कोई समस्या हो रही है?",
		"आपकी भूख और ऊर्जा का स्तर कैसा है?",
		"क्या आपको कोई एलर्जी या चिकित्सा स्थिति है जिसके बारे में मुझे जानना चाहिए?",
	},
}

// fallbackTopics are checked in order; the first whose trigger appears in
// the utterance decides which pool entries are preferred.
var fallbackTopics = []struct {
	triggers []string
	prefer   []string
}{
	{ // pain
		triggers: []string{"pain", "hurt", "ache", "दर्द"},
		prefer:   []string{"pain", "rate", "scale", "दर्द", "पैमाने"},
	},
	{ // fever
		triggers: []string{"fever", "temperature", "बुखार"},
		prefer:   []string{"symptoms", "when", "long", "लक्षण", "कब"},
	},
	{ // stress
		triggers: []string{"stress", "anxiety", "worried", "तनाव", "चिंता"},
		prefer:   []string{"feel", "stress", "lifestyle", "महसूस", "तनाव"},
	},
}

// DefaultQuestionCount is the number of suggestions per utterance.
const DefaultQuestionCount = 3

// FallbackQuestions picks count questions from the local pool for lang.
// The result is a numbered list when count > 1 and a bare question otherwise.
func FallbackQuestions(text string, lang Language, count int) string {
	if count < 1 {
		count = 1
	}
	pool, ok := fallbackPools[lang]
	if !ok {
		pool = fallbackPools[EnglishUS]
	}

	selected := make([]string, 0, count)
	seen := make(map[string]bool, count)
	add := func(q string) {
		if len(selected) < count && !seen[q] {
			seen[q] = true
			selected = append(selected, q)
		}
	}

	lower := strings.ToLower(text)
	for _, topic := range fallbackTopics {
		if !containsAny(lower, topic.triggers) {
			continue
		}
		for _, q := range pool {
			if containsAny(strings.ToLower(q), topic.prefer) {
				add(q)
			}
		}
		break
	}
	for _, q := range pool {
		add(q)
	}

	if count == 1 {
		return selected[0]
	}
	lines := make([]string, len(selected))
	for i, q := range selected {
		lines[i] = fmt.Sprintf("%d. %s", i+1, q)
	}
	return strings.Join(lines, "\n")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
