// Package language owns the display-language choice for transcripts and the
// language code normalization shared with the transcription service.
//
// The review front-end shows every utterance in exactly one of two languages.
// Setting carries that choice explicitly to whoever renders, and notifies
// subscribers when it changes; there is no package-level current language.
package language
