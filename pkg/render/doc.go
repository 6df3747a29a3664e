// Package render turns dialogue outcomes into user-facing text.
//
// Templates renders from a YAML catalog of canned responses. Generative asks a
// language model to phrase the same message and falls back to the templates
// whenever the model fails, times out, or returns nothing. Both implement
// ports.Renderer, so the caller picks one at startup and the dialogue core never
// knows which.
package render
