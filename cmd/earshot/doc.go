// Command earshot runs the context review backend and provides a terminal
// front-end for it.
//
// `earshot serve` owns the SQLite database and the REST API. Every other
// command is a thin HTTP client: `contexts` lists sessions, `show` renders the
// codeword table, speaker graph and audio list of one context, `transcript`
// prints one audio transcript in the selected language, and `create` and
// `upload` add data.
package main
