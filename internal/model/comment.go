package model

import "time"

// Comment is a free-text remark on an event.  Only its author may delete it.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Event     EventRef  `json:"event"`
	User      UserRef   `json:"user"`
}

// EventRef is the minimal event identity shown next to comments and orders.
type EventRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
