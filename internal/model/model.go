package model

import "time"

// Article is a remote entity; the client never mutates one.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Abstract        string    `json:"abstract"`
	Authors         []string  `json:"authors"`
	Keywords        []string  `json:"keywords"`
	PublicationDate time.Time `json:"publication_date"`
	Translation     string    `json:"translation,omitempty"`
}

// Topic is a remote entity; the client never mutates one.
type Topic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User is the authenticated profile. SubscribedTopics lives here rather than
// in a separate cache; subscribe/unsubscribe rewrite it through the session.
type User struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	ProfileType      string   `json:"profile_type"`
	SubscribedTopics []string `json:"subscribed_topics"`
}

// FeedPage is one page of the subscribed feed as reported by the server.
type FeedPage struct {
	Articles []Article `json:"articles"`
	Total    int       `json:"total"`
}
