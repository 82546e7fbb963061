// Package branch forks a chat window at a clicked block of a past message.
//
// The clicked block's anchor text is its rightmost-deepest non-blank leaf.
// The new history is every message before the clicked one plus the clicked
// message cut right after the first occurrence of the anchor text.
//
// Matching is a literal substring search. When the anchor text also
// appears earlier in the message the cut lands on that earlier
// occurrence; this is a known limitation and is kept as is.
//
// A Guard allows one branch at a time and ignores calls that arrive within
// a short cooldown after the previous branch finished, so a double click
// never opens two windows.
package branch
