package api

import (
	"github.com/aidanproy/minorminer/pkg/embed"
)

// EmbedRequest is the JSON body of embedding endpoints. Edges are label
// pairs; labels are arbitrary strings. Options maps one-to-one onto
// [embed.Options]; omitted fields take engine defaults.
type EmbedRequest struct {
	Source  [][2]string            `json:"source"`
	Target  [][2]string            `json:"target"`
	Options *embed.Options[string] `json:"options,omitempty"`
}

// edges converts a request edge list into engine edges.
func edges(pairs [][2]string) []embed.Edge[string] {
	out := make([]embed.Edge[string], len(pairs))
	for i, p := range pairs {
		out[i] = embed.Edge[string]{U: p[0], V: p[1]}
	}
	return out
}

// EmbedResponse is the result of a synchronous embedding call.
type EmbedResponse struct {
	Mapping  map[string][]string `json:"mapping"`
	Success  bool                `json:"success"`
	Quality  embed.Quality       `json:"quality"`
	CacheHit bool                `json:"cache_hit"`
}

// JobResponse describes an asynchronous job.
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
