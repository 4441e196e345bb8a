package mood

import "strings"

type keywordRule struct {
	label    Label
	keywords []string
}

// Rules are checked in order; the first label with a matching keyword wins.
var keywordTable = []keywordRule{
	{Happy, []string{"开心", "高兴", "快乐", "哈哈", "😊", "😄"}},
	{Excited, []string{"激动", "兴奋", "太棒了", "amazing", "🎉"}},
	{Joyful, []string{"欢乐", "愉快", "美好", "wonderful"}},
	{Proud, []string{"自豪", "骄傲", "成功", "厉害"}},
	{Sad, []string{"难过", "伤心", "失落", "😢", "😭"}},
	{Anxious, []string{"焦虑", "紧张", "担心", "不安"}},
	{Tired, []string{"累", "疲惫", "困", "睡觉"}},
	{Confused, []string{"困惑", "不懂", "迷茫", "？"}},
	{Loving, []string{"爱", "喜欢", "❤️", "💕"}},
	{Peaceful, []string{"平静", "安静", "宁静", "放松"}},
}

// Detect returns the first mood whose keywords occur in text, or Neutral.
// Matching is plain substring search.
func Detect(text string) Label {
	for _, rule := range keywordTable {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.label
			}
		}
	}
	return Neutral
}

// Keywords returns every table keyword found in text, in table order.
func Keywords(text string) []string {
	var found []string
	for _, rule := range keywordTable {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				found = append(found, kw)
			}
		}
	}
	return found
}
