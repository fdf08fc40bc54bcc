package tui

import (
	"github.com/arthurgrandao/scinewsAI/internal/cache"
	"github.com/arthurgrandao/scinewsAI/internal/model"
)

type feedLoadedMsg struct {
	snapshot cache.FeedSnapshot
}

type feedErrMsg struct {
	err error
}

type topicsLoadedMsg struct {
	topics []model.Topic
}

type likesLoadedMsg struct{}

type toggleDoneMsg struct {
	articleID string
	err       error
}

type statsLoadedMsg struct {
	articleID string
	count     int
}

type loggedOutMsg struct{}
