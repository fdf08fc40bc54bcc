package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

func renderPreview(article *model.Article, likeCount int, liked bool, width, height, scroll int) string {
	if article == nil {
		return lipglossCenter("Select an article", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(article.Title)
	byline := previewAuthorStyle.Render(
		fmt.Sprintf("%s · %s", strings.Join(article.Authors, ", "), article.PublicationDate.Format("Jan 2, 2006")),
	)

	abstract := article.Abstract
	if article.Translation != "" {
		abstract = article.Translation
	}
	if abstract == "" {
		abstract = "(No abstract available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(abstract, contentWidth))

	likes := fmt.Sprintf("%d likes", likeCount)
	if liked {
		likes = itemLikedStyle.Render("♥ ") + likes
	}

	keywords := previewKeywordStyle.Width(contentWidth).Render(strings.Join(article.Keywords, " · "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, byline, "", body, "", likes, keywords)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
