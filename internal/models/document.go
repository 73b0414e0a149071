// Package models defines the domain types for raido.
package models

import "time"

// Document is a markdown source file read from the input tree.
type Document struct {
	Path        string         `json:"path"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Body        string         `json:"body"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Order       *float64       `json:"order,omitempty"`
	Date        time.Time      `json:"date,omitempty"`
	Checksum    string         `json:"checksum"`
	ModTime     time.Time      `json:"mod_time"`
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Heading is one heading encountered while rendering a document.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
	Slug  string `json:"slug"`
}
