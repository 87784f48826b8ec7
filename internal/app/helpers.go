package app

import (
	"fmt"
	"strings"

	"reelforge/internal/trends"
)

// visualKeywords enriches topic searches so stock results skew toward
// footage that works as a vertical background.
var visualKeywords = map[string][]string{
	"en": {"cinematic", "aesthetic", "vertical"},
	"hi": {"cinematic", "beautiful", "india"},
}

func searchQuery(topic trends.Topic, language string) string {
	keywords := visualKeywords[language]
	if keywords == nil {
		keywords = visualKeywords["en"]
	}
	return topic.Title + " " + strings.Join(keywords, " ")
}

func reelTitle(topic trends.Topic) string {
	title := strings.TrimSpace(topic.Title)
	if len(title) > 90 {
		title = title[:90]
	}
	return title + " #shorts"
}

func reelDescription(topic trends.Topic) string {
	return fmt.Sprintf("%s\n\nA daily short about %s. New reels every day.", topic.Title, topic.Category)
}

func reelTags(topic trends.Topic, defaults []string) []string {
	tags := append([]string{}, defaults...)
	tags = append(tags, string(topic.Category))
	for _, word := range strings.Fields(strings.ToLower(topic.Title)) {
		word = strings.Trim(word, ".,!?:;\"'")
		if len(word) > 3 {
			tags = append(tags, word)
		}
	}
	if len(tags) > 15 {
		tags = tags[:15]
	}
	return tags
}

func firstComment(configured string, topic trends.Topic) string {
	if configured == "" {
		return ""
	}
	return strings.ReplaceAll(configured, "{topic}", topic.Title)
}
