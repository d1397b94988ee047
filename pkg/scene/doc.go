// Package scene models the overlay layer sequences render into: a tree of
// structured element descriptions plus a stage that owns one singleton mount
// per sequence family and fits it to the viewport.
//
// Building overlays as node trees instead of markup strings keeps phases
// testable without a live document and keeps untrusted text (character
// names, dialogue) out of any parser.
package scene
