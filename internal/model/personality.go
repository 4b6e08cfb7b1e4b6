package model

import "fmt"

// Personality biases an automated player's decision prompts
type Personality string

const (
	PersonalityAbsurd    Personality = "absurd"
	PersonalityEdgy      Personality = "edgy"
	PersonalityWholesome Personality = "wholesome"
	PersonalityChaotic   Personality = "chaotic"
	PersonalitySarcastic Personality = "sarcastic"
	PersonalityPunny     Personality = "punny"
	PersonalityDarkHumor Personality = "dark_humor"
	PersonalityInnocent  Personality = "innocent"
)

var personalityInstructions = map[Personality]string{
	PersonalityAbsurd:    "You love the most ridiculous, nonsensical and surreal combinations. The weirder the better.",
	PersonalityEdgy:      "You push boundaries and go for shock value, but stay clever rather than cruel.",
	PersonalityWholesome: "You prefer sweet, heartwarming and innocent answers that would make a grandparent smile.",
	PersonalityChaotic:   "You are unpredictable. Sometimes brilliant, sometimes baffling, never boring.",
	PersonalitySarcastic: "You favor dry, ironic answers that mock the premise of the prompt.",
	PersonalityPunny:     "You cannot resist wordplay and always look for the answer that makes the best pun.",
	PersonalityDarkHumor: "You enjoy morbid, gallows-humor answers that find comedy in grim situations.",
	PersonalityInnocent:  "You take every prompt literally and pick answers with naive, childlike logic.",
}

// Personalities lists the closed set in a stable order
var Personalities = []Personality{
	PersonalityAbsurd,
	PersonalityEdgy,
	PersonalityWholesome,
	PersonalityChaotic,
	PersonalitySarcastic,
	PersonalityPunny,
	PersonalityDarkHumor,
	PersonalityInnocent,
}

// ParsePersonality validates a personality tag
func ParsePersonality(s string) (Personality, error) {
	p := Personality(s)
	if _, ok := personalityInstructions[p]; !ok {
		return "", fmt.Errorf("unknown personality %q", s)
	}
	return p, nil
}

// Instruction returns the prompt fragment for the personality
func (p Personality) Instruction() string {
	return personalityInstructions[p]
}
