// Package ingest turns an uploaded audio file into a stored audio sample.
//
// Ingest writes the upload to the staging directory under a uuid-prefixed
// name, transcribes it, translates the Russian transcript to English, records
// any new speakers and the sample itself, then regenerates the context
// description from every transcript in the context.
//
// Only storing the file and the sample are hard failures. Transcription,
// translation and summary problems are logged and reported as warnings on the
// Result: an untranscribed sample is stored without utterances, English falls
// back to the Russian text and the previous description is kept.
package ingest
