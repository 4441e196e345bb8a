// Package mood classifies text into mood labels and summarizes mood history.
package mood

// Label is a mood category such as "happy" or "sad".
type Label string

// Labels rendered by the soul ball.
const (
	Happy        Label = "happy"
	Excited      Label = "excited"
	Joyful       Label = "joyful"
	Proud        Label = "proud"
	Grateful     Label = "grateful"
	Peaceful     Label = "peaceful"
	Content      Label = "content"
	Hopeful      Label = "hopeful"
	Loving       Label = "loving"
	Confident    Label = "confident"
	Sad          Label = "sad"
	Anxious      Label = "anxious"
	Lonely       Label = "lonely"
	Tired        Label = "tired"
	Confused     Label = "confused"
	Worried      Label = "worried"
	Disappointed Label = "disappointed"
	Frustrated   Label = "frustrated"
	Melancholy   Label = "melancholy"
	Nostalgic    Label = "nostalgic"

	// Labels produced by model-based analysis.
	Calm  Label = "calm"
	Angry Label = "angry"

	Neutral Label = "neutral"
)

var names = map[Label]string{
	Happy:        "开心",
	Excited:      "激动",
	Joyful:       "兴奋",
	Proud:        "自豪",
	Grateful:     "感激",
	Peaceful:     "平静",
	Content:      "满足",
	Hopeful:      "希望",
	Loving:       "爱意",
	Confident:    "自信",
	Sad:          "失落",
	Anxious:      "焦虑",
	Lonely:       "孤独",
	Tired:        "疲惫",
	Confused:     "困惑",
	Worried:      "担心",
	Disappointed: "失望",
	Frustrated:   "沮丧",
	Melancholy:   "忧郁",
	Nostalgic:    "怀念",
	Calm:         "平静",
	Angry:        "愤怒",
	Neutral:      "平常",
}

// Known reports whether l is one of the supported labels.
func (l Label) Known() bool {
	_, ok := names[l]
	return ok
}

// Name returns the display name of l. Unknown labels are shown as neutral.
func (l Label) Name() string {
	if n, ok := names[l]; ok {
		return n
	}
	return names[Neutral]
}

// Normalize maps unknown or empty labels to Neutral.
func Normalize(s string) Label {
	l := Label(s)
	if !l.Known() {
		return Neutral
	}
	return l
}
