package main

import (
	"time"

	"dictionary_classifier/classifier"
)

// compiledDictionary is one loaded dictionary together with its matchers.
// A reload or an edit always builds a new value, so requests still holding
// an older one finish against the dictionary they started with.
type compiledDictionary struct {
	name       string
	dictionary classifier.Dictionary
	compiled   *classifier.Compiled
	revision   string // uuid, changes on every compile
	loadedAt   time.Time
	source     string // "file", "built-in" or "edit"
	filePath   string // empty unless source is "file"
	modTime    time.Time
}

// Request/Response structures
type ClassifyRequest struct {
	Dictionary string    `json:"dictionary" form:"dictionary" query:"dictionary"`
	Statement  string    `json:"statement" form:"statement" query:"statement"`
	Statements []*string `json:"statements"`
}

type ClassifyResponse struct {
	Dictionary string `json:"dictionary"`
	Revision   string `json:"revision"`
	Labels     string `json:"labels"`
}

// BatchClassifyResponse answers a request carrying "statements"; Results is
// always present, empty for an empty batch.
type BatchClassifyResponse struct {
	Dictionary string   `json:"dictionary"`
	Revision   string   `json:"revision"`
	Results    []string `json:"results"`
}

type PreviewResponse struct {
	Dictionary string              `json:"dictionary"`
	Revision   string              `json:"revision"`
	Rows       int                 `json:"rows"`
	Columns    []string            `json:"columns"`
	Preview    []map[string]string `json:"preview"`
}

type DictionaryResponse struct {
	Name       string                     `json:"name"`
	Revision   string                     `json:"revision"`
	LoadedAt   time.Time                  `json:"loaded_at"`
	Source     string                     `json:"source"`
	Dictionary classifier.Dictionary      `json:"dictionary"`
	Stats      []classifier.CompiledStats `json:"stats"`
}

type ReloadResponse struct {
	Message    string    `json:"message"`
	Dictionary string    `json:"dictionary,omitempty"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

type ErrorResponse struct {
	Error string  `json:"error"`
	Label *string `json:"label,omitempty"`
}
