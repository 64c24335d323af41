// Package form is the engine behind every member-intake form: it reads the
// live state of rendered field widgets, gates submission on required fields,
// and assembles the flat key → value payload handed to a transport.
//
// Widgets come in four kinds (Text, SingleSelect, MultiSelect, Signature).
// Select widgets may offer the "_other" sentinel, in which case the real value
// is read from a paired free-text sibling identified by OtherID(key). Single
// selects also understand "_default", the placeholder option meaning nothing
// was chosen. Neither sentinel ever reaches a payload.
//
// The engine only reads widget state. Visual side effects of validation (the
// invalid marking, the " (required!)" placeholder suffix and the aggregate
// notice) flow through a Presenter; Annotations is the in-memory presenter the
// bundled HTML and terminal surfaces consume.
//
// Required-field validation here is a usability aid. Receivers must validate
// payloads again on their side.
package form
